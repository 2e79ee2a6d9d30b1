package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Redd-Hibb/stacsos/buddy"
	"github.com/Redd-Hibb/stacsos/pageframe"
	"github.com/Redd-Hibb/stacsos/pageframe/persist"
)

const (
	arenaFileName = "arena.bin"
	metaFileName  = "meta.json"
)

// meta is the on-disk snapshot of everything an Allocator needs beyond the
// arena bytes themselves: the arena's shape, and the free-list structure
// that only lives in Go heap memory between process runs.
type meta struct {
	FrameCount    uint64                       `json:"frame_count"`
	PageShift     uint                         `json:"page_shift"`
	TotalFree     uint64                       `json:"total_free"`
	Stats         buddy.Stats                  `json:"stats"`
	FreeListHeads [buddy.LastOrder + 1]int64   `json:"free_list_heads"`
}

func metaPath(dir string) string  { return filepath.Join(dir, metaFileName) }
func arenaPath(dir string) string { return filepath.Join(dir, arenaFileName) }

// createState initializes a fresh state directory with an empty allocator
// over frameCount frames.
func createState(dir string, frameCount uint64, pageShift uint) error {
	if _, err := os.Stat(metaPath(dir)); err == nil {
		return fmt.Errorf("state already exists at %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	reg, err := pageframe.New(frameCount, pageframe.WithPageShift(pageShift), pageframe.WithMmapBacking(arenaPath(dir)))
	if err != nil {
		return fmt.Errorf("initialize arena: %w", err)
	}
	defer reg.Close()

	var heads [buddy.LastOrder + 1]int64
	for i := range heads {
		heads[i] = -1
	}
	m := meta{FrameCount: frameCount, PageShift: pageShift, FreeListHeads: heads}
	return writeMeta(dir, m)
}

func writeMeta(dir string, m meta) error {
	f, err := os.Create(metaPath(dir))
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func readMeta(dir string) (meta, error) {
	var m meta
	f, err := os.Open(metaPath(dir))
	if err != nil {
		return m, fmt.Errorf("read metadata: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return m, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// session bundles an open allocator with what's needed to persist it again.
type session struct {
	dir     string
	reg     *pageframe.Registry
	tracker *persist.Tracker
	alloc   *buddy.Allocator
}

// openState reopens a previously-created state directory, restoring the
// allocator's free-list structure from its metadata snapshot.
func openState(dir string) (*session, error) {
	m, err := readMeta(dir)
	if err != nil {
		return nil, err
	}

	reg, err := pageframe.New(m.FrameCount, pageframe.WithPageShift(m.PageShift), pageframe.WithMmapBacking(arenaPath(dir)))
	if err != nil {
		return nil, fmt.Errorf("open arena: %w", err)
	}

	tracker := persist.NewTracker(reg)
	alloc := buddy.NewAllocator(reg,
		buddy.WithDirtyTracker(tracker),
		buddy.WithRestoredState(m.TotalFree, m.Stats, m.FreeListHeads),
	)

	return &session{dir: dir, reg: reg, tracker: tracker, alloc: alloc}, nil
}

// close flushes dirty pages, snapshots the allocator's structure back to
// metadata, and releases the arena mapping.
func (s *session) close() error {
	if err := s.tracker.Flush(context.Background()); err != nil {
		s.reg.Close()
		return fmt.Errorf("flush dirty pages: %w", err)
	}

	snap := s.alloc.Stats()
	m := meta{
		FrameCount:    s.reg.FrameCount(),
		PageShift:     s.reg.PageShift(),
		TotalFree:     snap.TotalFree,
		Stats:         snap,
		FreeListHeads: s.alloc.FreeListHeads(),
	}
	if err := writeMeta(s.dir, m); err != nil {
		s.reg.Close()
		return err
	}

	return s.reg.Close()
}
