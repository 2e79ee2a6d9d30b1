package pageframe

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// DefaultPageShift is the default page-size exponent: log2(4096).
const DefaultPageShift = 12

// nextFreeLinkSize is the width, in bytes, of the intrusive free-list link
// stored in the first machine word of a free page's body.
const nextFreeLinkSize = 8

// noNextPFN is the sentinel value meaning "no next free block" in the
// intrusive link. PFN math never produces this value for a real frame
// because a Registry never manages more than 2^64-2 frames.
const noNextPFN = ^uint64(0)

// Page is a handle identifying one physical page frame.
//
// A Page's identity is its PFN. The Registry that created a Page guarantees
// that repeated calls to GetFromPFN for the same PFN return the same *Page.
type Page struct {
	reg *Registry
	pfn uint64
}

// PFN returns the page frame number of this page.
func (p *Page) PFN() uint64 {
	return p.pfn
}

// BaseAddress returns the physical byte address of the start of this page.
func (p *Page) BaseAddress() uint64 {
	return p.pfn << p.reg.pageShift
}

// BaseAddressPtr returns a writable pointer into the start of this page's
// body. It is only valid to write through this pointer while the page is
// free; once allocated, the body belongs exclusively to the caller.
func (p *Page) BaseAddressPtr() unsafe.Pointer {
	return unsafe.Pointer(&p.reg.arena[p.BaseAddress()])
}

// body returns the raw bytes backing this single page.
func (p *Page) body() []byte {
	base := p.BaseAddress()
	return p.reg.arena[base : base+p.reg.pageSize]
}

// NextFree reads the intrusive free-list link stored in the first machine
// word of this page's body. It returns nil if the link is unset.
//
// The link is stored as a PFN rather than a raw pointer so that the page
// body — which may live in a plain heap slice or an mmap'd file — never
// needs to hold a Go pointer value the garbage collector cannot see.
func (p *Page) NextFree() *Page {
	raw := binary.LittleEndian.Uint64(p.body()[:nextFreeLinkSize])
	if raw == noNextPFN {
		return nil
	}
	return p.reg.GetFromPFN(raw)
}

// SetNextFree writes the intrusive free-list link into the first machine
// word of this page's body.
func (p *Page) SetNextFree(next *Page) {
	v := noNextPFN
	if next != nil {
		v = next.pfn
	}
	binary.LittleEndian.PutUint64(p.body()[:nextFreeLinkSize], v)
}

// Registry owns a population of physical page frames and hands out stable
// Page handles for them.
//
// WARNING: Registry is NOT goroutine-safe.
type Registry struct {
	arena     []byte
	pages     []Page
	pageShift uint
	pageSize  uint64

	closeBacking func() error
}

// Option configures a Registry at construction time.
type Option func(*config) error

type config struct {
	pageShift    uint
	mmapPath     string
	useMmap      bool
}

// WithPageShift overrides the default page-size exponent (4KiB pages). Tests
// commonly use a small shift to keep synthetic arenas cheap.
func WithPageShift(shift uint) Option {
	return func(c *config) error {
		c.pageShift = shift
		return nil
	}
}

// WithMmapBacking backs the Registry's arena with an mmap'd file at path
// instead of a plain heap-allocated slice. This is what enables
// pageframe/persist to flush dirty ranges with msync.
func WithMmapBacking(path string) Option {
	return func(c *config) error {
		c.mmapPath = path
		c.useMmap = true
		return nil
	}
}

// New creates a Registry managing frameCount physical page frames.
func New(frameCount uint64, opts ...Option) (*Registry, error) {
	if frameCount == 0 {
		return nil, ErrInvalidFrameCount
	}

	cfg := config{pageShift: DefaultPageShift}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.pageShift < 3 {
		return nil, ErrPageShiftTooSmall
	}

	pageSize := uint64(1) << cfg.pageShift
	totalBytes := frameCount * pageSize

	var arena []byte
	var closeBacking func() error
	fresh := true
	if cfg.useMmap {
		mapped, preexisting, closer, err := mmapArena(cfg.mmapPath, totalBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackingUnavailable, err)
		}
		arena = mapped
		closeBacking = closer
		fresh = !preexisting
	} else {
		arena = make([]byte, totalBytes)
	}

	r := &Registry{
		arena:        arena,
		pages:        make([]Page, frameCount),
		pageShift:    cfg.pageShift,
		pageSize:     pageSize,
		closeBacking: closeBacking,
	}
	for i := range r.pages {
		r.pages[i] = Page{reg: r, pfn: uint64(i)}
	}
	// Every page's intrusive free-list link starts unset. Without this, a
	// zero-filled arena would decode PFN 0 out of a fresh page's body and
	// misread it as "next free is frame 0" instead of "no next". Skipped for
	// a reopened mmap-backed arena, whose page bodies already hold live
	// links from the session that wrote them.
	if fresh {
		for i := range r.pages {
			r.pages[i].SetNextFree(nil)
		}
	}
	return r, nil
}

// FrameCount returns the number of physical frames this registry manages.
func (r *Registry) FrameCount() uint64 {
	return uint64(len(r.pages))
}

// PageShift returns this registry's page-size exponent.
func (r *Registry) PageShift() uint {
	return r.pageShift
}

// PageSize returns this registry's page size in bytes.
func (r *Registry) PageSize() uint64 {
	return r.pageSize
}

// GetFromPFN returns the Page handle for the given PFN. It panics if pfn is
// out of range, matching the "total, constant-time" contract this lookup
// must uphold for the buddy allocator's internals.
func (r *Registry) GetFromPFN(pfn uint64) *Page {
	if pfn >= uint64(len(r.pages)) {
		panic(fmt.Sprintf("pageframe: pfn %d out of range [0, %d)", pfn, len(r.pages)))
	}
	return &r.pages[pfn]
}

// Bytes returns the raw backing arena for the whole registry. It exists for
// pageframe/persist, which needs the underlying slice to call msync against
// dirty sub-ranges of it.
func (r *Registry) Bytes() []byte {
	return r.arena
}

// BlockBytes returns the raw bytes spanning a block of 2^order pages
// starting at the page with the given PFN.
func (r *Registry) BlockBytes(pfn uint64, order int) []byte {
	base := pfn << r.pageShift
	size := (uint64(1) << uint(order)) << r.pageShift
	return r.arena[base : base+size]
}

// Close releases any resources backing the registry's arena (a no-op for a
// heap-backed registry).
func (r *Registry) Close() error {
	if r.closeBacking == nil {
		return nil
	}
	return r.closeBacking()
}
