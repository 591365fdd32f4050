package reindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestSurvey(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"receipts/foo.pdf",
		"receipts/foo.json",
		"receipts/bar.png",
		"data.json",
		"data.sidecar.json",
		"letters/orphan.eml",
		".hidden/x.json",
		"receipts/.docvault-tmp-42",
	} {
		touch(t, filepath.Join(root, rel))
	}

	inv, err := Survey(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "data.sidecar.json"),
		filepath.Join(root, "receipts", "foo.json"),
	}, inv.Sidecars)
	assert.Equal(t, []string{
		filepath.Join(root, "letters", "orphan.eml"),
		filepath.Join(root, "receipts", "bar.png"),
	}, inv.Orphans)
}

func TestSurvey_MissingRoot(t *testing.T) {
	inv, err := Survey(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, inv.Sidecars)
	assert.Empty(t, inv.Orphans)
}

func TestItemTypeOf(t *testing.T) {
	root := "/archive"
	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"root file", "/archive/foo.pdf", "unknown"},
		{"first level", "/archive/receipts/foo.pdf", "receipts"},
		{"nested", "/archive/receipts/2024/foo.pdf", "receipts"},
		{"outside root", "/elsewhere/foo.pdf", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, itemTypeOf(root, tt.original))
		})
	}
}
