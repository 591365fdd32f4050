package etl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docvault/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pathFailingExtractor fails for one file name and reads the rest as text.
type pathFailingExtractor struct {
	failName string
}

func (p pathFailingExtractor) Extract(ctx context.Context, path string) (*extract.Result, error) {
	if filepath.Base(path) == p.failName {
		return nil, extract.ErrToolFailed
	}
	return extract.TextExtractor{}.Extract(ctx, path)
}

func TestScanOnce(t *testing.T) {
	dirs := testDirs(t)
	dropFile(t, dirs, "root.txt", "at root")
	dropFile(t, dirs, "receipts/r1.txt", "receipt")
	dropFile(t, dirs, "receipts/2025/r2.txt", "nested")
	dropFile(t, dirs, "receipts/.DS_Store", "hidden")
	dropFile(t, dirs, ".cache/c.txt", "hidden dir")
	bad := dropFile(t, dirs, "mail/broken.eml", "x")

	p := newTestProcessor(t, dirs, pathFailingExtractor{failName: "broken.eml"})
	result, err := NewScanner(p).ScanOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ScanResult{Processed: 3, Failed: 1}, result)
	assert.FileExists(t, filepath.Join(dirs.Archive, "root.txt"))
	assert.FileExists(t, filepath.Join(dirs.Archive, "receipts", "r1.json"))
	assert.FileExists(t, filepath.Join(dirs.Archive, "receipts", "2025", "r2.txt"))
	assert.FileExists(t, filepath.Join(dirs.Inbox, "receipts", ".DS_Store"))
	assert.FileExists(t, filepath.Join(dirs.Inbox, ".cache", "c.txt"))
	assert.FileExists(t, bad, "failed file stays for retry")

	r2 := readSidecar(t, filepath.Join(dirs.Archive, "receipts", "2025", "r2.json"))
	assert.Equal(t, "receipts", r2.ItemType)
	root := readSidecar(t, filepath.Join(dirs.Archive, "root.json"))
	assert.Equal(t, "unknown", root.ItemType)

	staged, err := os.ReadDir(dirs.Staging)
	require.NoError(t, err)
	assert.Len(t, staged, 3)
}

func TestScanOnce_EmptyInboxCreated(t *testing.T) {
	dirs := testDirs(t)
	p := newTestProcessor(t, dirs, extract.TextExtractor{})

	result, err := NewScanner(p).ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result)
	assert.DirExists(t, dirs.Inbox)
}

func TestScanOnce_Cancelled(t *testing.T) {
	dirs := testDirs(t)
	src := dropFile(t, dirs, "a.txt", "x")
	p := newTestProcessor(t, dirs, extract.TextExtractor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner(p).ScanOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, src)
}
