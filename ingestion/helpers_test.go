package ingestion

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/docvault/ai/mock"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/poiesic/docvault/storage/badger"
	"github.com/stretchr/testify/require"
)

// countingIndex wraps a real index, counting upserts and injecting failures.
type countingIndex struct {
	storage.VectorIndex

	mu         sync.Mutex
	upserts    []*core.IndexObject
	upsertErr  error
	getErr     error
	addErr     error
	createErr  error
	addedProps []string
}

func (c *countingIndex) Upsert(ctx context.Context, obj *core.IndexObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.upsertErr != nil {
		return c.upsertErr
	}
	c.upserts = append(c.upserts, obj)
	return c.VectorIndex.Upsert(ctx, obj)
}

func (c *countingIndex) GetCollection(ctx context.Context, class string) (*core.Collection, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.VectorIndex.GetCollection(ctx, class)
}

func (c *countingIndex) CreateCollection(ctx context.Context, collection *core.Collection) error {
	if c.createErr != nil {
		return c.createErr
	}
	return c.VectorIndex.CreateCollection(ctx, collection)
}

func (c *countingIndex) AddProperty(ctx context.Context, class string, p core.Property) error {
	if c.addErr != nil {
		return c.addErr
	}
	c.addedProps = append(c.addedProps, p.Name)
	return c.VectorIndex.AddProperty(ctx, class, p)
}

func (c *countingIndex) upsertCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.upserts)
}

// testClock returns strictly increasing times one second apart.
func testClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	index    *countingIndex
	embedder *mock.MockEmbedder
	syncer   *Syncer
	marks    *badger.WatermarkRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	index, marks, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	counting := &countingIndex{VectorIndex: index}
	embedder := mock.NewMockEmbedder()
	syncer, err := NewSyncer(counting, embedder, WithClock(testClock()))
	require.NoError(t, err)
	return &fixture{index: counting, embedder: embedder, syncer: syncer, marks: marks}
}

func (f *fixture) ensureSchema(t *testing.T) {
	t.Helper()
	_, err := f.syncer.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func writeSidecar(t *testing.T, dir, name string, s *core.Sidecar) string {
	t.Helper()
	data, err := json.MarshalIndent(s, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func sampleSidecar(text string) *core.Sidecar {
	archived := "/archive/receipts/foo.pdf"
	return &core.Sidecar{
		ID:               core.ContentID(archived, "abc123"),
		SourcePath:       "/inbox/receipts/foo.pdf",
		ArchivedPath:     archived,
		ItemType:         "receipts",
		OriginalFilename: "foo.pdf",
		Checksum:         "abc123",
		CreatedAt:        "2024-12-31T23:00:00.000000Z",
		UpdatedAt:        "2024-12-31T23:00:00.000000Z",
		Text:             text,
		Metadata:         map[string]any{},
	}
}
