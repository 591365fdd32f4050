package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarks_Advance(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		initial []time.Time
		advance time.Time
		want    time.Time
	}{
		{"first mark", nil, base, base},
		{"moves forward", []time.Time{base}, base.Add(time.Second), base.Add(time.Second)},
		{"never moves back", []time.Time{base}, base.Add(-time.Hour), base},
		{"equal is a no-op", []time.Time{base}, base, base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatermarks()
			for _, m := range tt.initial {
				w.Advance("/a.md", m)
			}
			w.Advance("/a.md", tt.advance)
			got, ok := w.Get("/a.md")
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestWatermarks_Stale(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w := NewWatermarks()
	assert.True(t, w.Stale("/a.md", base))

	w.Advance("/a.md", base)
	assert.False(t, w.Stale("/a.md", base))
	assert.False(t, w.Stale("/a.md", base.Add(-time.Minute)))
	assert.True(t, w.Stale("/a.md", base.Add(time.Nanosecond)))
}

func TestWatermarks_Retain(t *testing.T) {
	now := time.Now()
	w := NewWatermarks()
	w.Advance("/a.md", now)
	w.Advance("/b.md", now)
	w.Advance("/c.md", now)

	dropped := w.Retain(map[string]struct{}{"/b.md": {}})
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, w.Len())
	_, ok := w.Get("/b.md")
	assert.True(t, ok)
}

func TestWatermarks_EntriesRoundTrip(t *testing.T) {
	w := NewWatermarks()
	w.Advance("/z.md", time.Unix(0, 200))
	w.Advance("/a.md", time.Unix(0, 100))

	entries := w.Entries()
	assert.Equal(t, []core.WatermarkEntry{
		{Path: "/a.md", ModTimeNano: 100},
		{Path: "/z.md", ModTimeNano: 200},
	}, entries)

	restored := RestoreWatermarks(entries)
	assert.Equal(t, entries, restored.Entries())
}

func TestWatermarks_Persistence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := LoadWatermarks(ctx, f.marks)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	w := NewWatermarks()
	w.Advance("/notes/a.md", time.Unix(1700000000, 123456789))
	require.NoError(t, SaveWatermarks(ctx, f.marks, w))

	loaded, err := LoadWatermarks(ctx, f.marks)
	require.NoError(t, err)
	assert.Equal(t, w.Entries(), loaded.Entries())

	// A nil store keeps watermarks in memory only.
	require.NoError(t, SaveWatermarks(ctx, nil, w))
	mem, err := LoadWatermarks(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, mem.Len())
}
