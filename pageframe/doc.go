// Package pageframe implements the page-frame registry consumed by the
// buddy allocator in package buddy.
//
// # Overview
//
// A Registry owns a fixed-size backing arena (either a plain heap-allocated
// byte slice or an mmap'd file, see WithMmapBacking) and a parallel slice of
// Page handles, one per physical frame. The registry is the "external
// collaborator" the buddy allocator's design assumes exists: it hands out
// stable *Page pointers, resolves a PFN to its Page in constant time, and
// exposes the raw bytes of a page's body so the allocator can read and write
// its intrusive free-list link.
//
// # Identity
//
// GetFromPFN always returns the same *Page for the same PFN, for the
// lifetime of the Registry. Callers (notably package buddy) rely on pointer
// identity, not just value equality, when comparing pages.
//
// # Thread Safety
//
// Registry and Page are NOT goroutine-safe. Callers must synchronize access
// externally, exactly as package buddy requires of its own callers.
package pageframe
