package reindex

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/docvault/ai/mock"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/etl"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{
		Workers:        4,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		Repair:         true,
	}
}

func setupSyncer(t *testing.T, embedder *mock.MockEmbedder) (*ingestion.Syncer, *badger.VectorIndex) {
	t.Helper()
	index, _, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	syncer, err := ingestion.NewSyncer(index, embedder)
	require.NoError(t, err)
	return syncer, index
}

// buildArchive runs files through the extraction stage and returns the dirs.
func buildArchive(t *testing.T, files map[string]string) etl.Dirs {
	t.Helper()
	root := t.TempDir()
	dirs := etl.Dirs{
		Inbox:   filepath.Join(root, "inbox"),
		Archive: filepath.Join(root, "archive"),
		Staging: filepath.Join(root, "staging"),
	}
	for rel, content := range files {
		path := filepath.Join(dirs.Inbox, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	processor, err := etl.NewProcessor(dirs, extract.NewDispatcher(), etl.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	result, err := etl.NewScanner(processor).ScanOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(files), result.Processed)
	return dirs
}

func TestNewReindexer_Validation(t *testing.T) {
	_, err := NewReindexer(nil)
	assert.ErrorIs(t, err, ErrSyncerRequired)

	syncer, _ := setupSyncer(t, mock.NewMockEmbedder())
	_, err = NewReindexer(syncer, WithConfig(nil))
	assert.Error(t, err)

	r, err := NewReindexer(syncer, WithConfig(&Config{}))
	require.NoError(t, err)
	assert.Equal(t, 1, r.config.Workers)
	assert.Equal(t, 1, r.config.MaxRetries)
}

func TestReindexer_RebuildsIndex(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{
		"receipts/a.txt": "TOTAL 12.50",
		"letters/b.md":   "Dear reader",
		"c.txt":          "loose note",
	})

	syncer, index := setupSyncer(t, mock.NewMockEmbedder())
	var buf bytes.Buffer
	r, err := NewReindexer(syncer, WithConfig(testConfig()), WithProgress(&buf))
	require.NoError(t, err)

	result, err := r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Loaded)
	assert.Zero(t, result.Failed)
	assert.NoError(t, result.Errors)
	assert.Contains(t, buf.String(), "3/3")

	count, err := index.CountObjects(ctx, ingestion.DefaultClass)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The replayed id is the one the extraction stage assigned.
	archived := filepath.Join(dirs.Archive, "receipts", "a.txt")
	checksum, err := core.ChecksumFile(archived)
	require.NoError(t, err)
	obj, err := index.GetObject(ctx, ingestion.DefaultClass, core.ContentID(archived, checksum))
	require.NoError(t, err)
	assert.Equal(t, "receipts", obj.Properties[core.PropItemType])
	assert.Equal(t, "TOTAL 12.50", obj.Properties[core.PropText])
}

func TestReindexer_Idempotent(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{
		"receipts/a.txt": "one",
		"receipts/b.txt": "two",
	})
	syncer, index := setupSyncer(t, mock.NewMockEmbedder())
	r, err := NewReindexer(syncer, WithConfig(testConfig()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := r.Run(ctx, dirs.Archive)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Loaded)
	}

	count, err := index.CountObjects(ctx, ingestion.DefaultClass)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReindexer_SkipsAndFailures(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{
		"receipts/a.txt":     "ok",
		"receipts/empty.txt": "",
	})
	broken := filepath.Join(dirs.Archive, "receipts", "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0644))

	embedder := mock.NewMockEmbedder()
	syncer, _ := setupSyncer(t, embedder)
	r, err := NewReindexer(syncer, WithConfig(testConfig()))
	require.NoError(t, err)

	result, err := r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.ErrorIs(t, result.Errors, core.ErrInvalidSidecar)
	assert.Equal(t, 1, embedder.CallCount(), "malformed and empty sidecars are never embedded")
}

func TestReindexer_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{"a.txt": "flaky"})

	embedder := mock.NewMockEmbedder()
	calls := 0
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("timeout")
		}
		return []float32{0.1, 0.2, 0.3}, nil
	}
	syncer, _ := setupSyncer(t, embedder)
	r, err := NewReindexer(syncer, WithConfig(testConfig()))
	require.NoError(t, err)

	result, err := r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 2, calls)
}

func TestReindexer_RepairsInterruptedMove(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{"receipts/a.txt": "kept"})

	// Interrupted after the move and before the sidecar write.
	orphan := filepath.Join(dirs.Archive, "receipts", "late.txt")
	require.NoError(t, os.WriteFile(orphan, []byte("recovered text"), 0644))

	syncer, index := setupSyncer(t, mock.NewMockEmbedder())
	r, err := NewReindexer(syncer,
		WithConfig(testConfig()),
		WithExtractor(extract.NewDispatcher()),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	result, err := r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)
	assert.Equal(t, 2, result.Loaded)

	sidecarPath := filepath.Join(dirs.Archive, "receipts", "late.json")
	sidecar, err := ingestion.LoadSidecar(sidecarPath)
	require.NoError(t, err)
	assert.Equal(t, "recovered text", sidecar.Text)
	assert.Equal(t, "receipts", sidecar.ItemType)
	assert.Equal(t, orphan, sidecar.ArchivedPath)
	assert.Equal(t, core.Timestamp(fixedNow), sidecar.CreatedAt)

	_, err = index.GetObject(ctx, ingestion.DefaultClass, sidecar.ID)
	require.NoError(t, err)

	// The repaired sidecar is an ordinary one on the next run.
	result, err = r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Zero(t, result.Repaired)
	assert.Equal(t, 2, result.Loaded)
}

func TestReindexer_OrphansWithoutExtractor(t *testing.T) {
	ctx := context.Background()
	dirs := buildArchive(t, map[string]string{"a.txt": "kept"})
	orphan := filepath.Join(dirs.Archive, "late.txt")
	require.NoError(t, os.WriteFile(orphan, []byte("lost"), 0644))

	syncer, _ := setupSyncer(t, mock.NewMockEmbedder())
	r, err := NewReindexer(syncer, WithConfig(testConfig()))
	require.NoError(t, err)

	result, err := r.Run(ctx, dirs.Archive)
	require.NoError(t, err)
	assert.Zero(t, result.Repaired)
	assert.Equal(t, 1, result.Loaded)
	assert.NoFileExists(t, filepath.Join(dirs.Archive, "late.json"))
}

func TestReindexer_EmptyArchive(t *testing.T) {
	syncer, _ := setupSyncer(t, mock.NewMockEmbedder())
	var buf bytes.Buffer
	r, err := NewReindexer(syncer, WithProgress(&buf))
	require.NoError(t, err)

	result, err := r.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	assert.Contains(t, buf.String(), "No sidecars found")

	_, err = r.Run(context.Background(), "")
	assert.ErrorIs(t, err, ErrArchiveRequired)
}

func TestReindexer_Cancelled(t *testing.T) {
	dirs := buildArchive(t, map[string]string{"a.txt": "x", "b.txt": "y"})
	syncer, _ := setupSyncer(t, mock.NewMockEmbedder())
	r, err := NewReindexer(syncer, WithConfig(testConfig()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, dirs.Archive)
	assert.ErrorIs(t, err, context.Canceled)
}
