package ingestion

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// Watermarks records, per absolute path, the modification time of the last
// successfully synced revision. It is owned by a single re-scan loop and is
// not safe for concurrent use.
type Watermarks struct {
	marks map[string]time.Time
}

// NewWatermarks returns an empty watermark set.
func NewWatermarks() *Watermarks {
	return &Watermarks{marks: make(map[string]time.Time)}
}

// Get returns the watermark of path.
func (w *Watermarks) Get(path string) (time.Time, bool) {
	t, ok := w.marks[path]
	return t, ok
}

// Stale reports whether modTime is newer than the watermark of path.
// Paths without a watermark are always stale.
func (w *Watermarks) Stale(path string, modTime time.Time) bool {
	t, ok := w.marks[path]
	return !ok || modTime.After(t)
}

// Advance moves the watermark of path forward to modTime. It never moves back.
func (w *Watermarks) Advance(path string, modTime time.Time) {
	if t, ok := w.marks[path]; ok && !modTime.After(t) {
		return
	}
	w.marks[path] = modTime
}

// Retain drops watermarks of paths not in keep.
func (w *Watermarks) Retain(keep map[string]struct{}) int {
	dropped := 0
	for path := range w.marks {
		if _, ok := keep[path]; !ok {
			delete(w.marks, path)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked paths.
func (w *Watermarks) Len() int {
	return len(w.marks)
}

// Entries returns a snapshot sorted by path.
func (w *Watermarks) Entries() []core.WatermarkEntry {
	entries := make([]core.WatermarkEntry, 0, len(w.marks))
	for path, t := range w.marks {
		entries = append(entries, core.WatermarkEntry{Path: path, ModTimeNano: t.UnixNano()})
	}
	slices.SortFunc(entries, func(a, b core.WatermarkEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return entries
}

// RestoreWatermarks rebuilds a watermark set from a snapshot.
func RestoreWatermarks(entries []core.WatermarkEntry) *Watermarks {
	w := NewWatermarks()
	for _, e := range entries {
		w.Advance(e.Path, time.Unix(0, e.ModTimeNano))
	}
	return w
}

// LoadWatermarks restores the snapshot held by store. A nil store yields an empty set.
func LoadWatermarks(ctx context.Context, store storage.WatermarkStore) (*Watermarks, error) {
	if store == nil {
		return NewWatermarks(), nil
	}
	entries, err := store.LoadWatermarks(ctx)
	if err != nil {
		return nil, err
	}
	return RestoreWatermarks(entries), nil
}

// SaveWatermarks writes a snapshot of w to store. A nil store is a no-op.
func SaveWatermarks(ctx context.Context, store storage.WatermarkStore, w *Watermarks) error {
	if store == nil {
		return nil
	}
	return store.SaveWatermarks(ctx, w.Entries())
}
