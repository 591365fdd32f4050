package docvault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/docvault/reindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_Run(t *testing.T) {
	tests := []struct {
		name  string
		watch bool
	}{
		{"polling", false},
		{"polling with watch", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Watch = tt.watch
			v := openVault(t, cfg)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- v.Run(ctx) }()

			require.Eventually(t, func() bool {
				_, err := os.Stat(cfg.InboxDir)
				return err == nil
			}, 2*time.Second, 5*time.Millisecond)
			require.NoError(t, os.WriteFile(filepath.Join(cfg.InboxDir, "letter.txt"), []byte("dear reader"), 0644))

			require.Eventually(t, func() bool {
				count, err := v.Index().CountObjects(context.Background(), cfg.Index.Class)
				return err == nil && count == 1
			}, 5*time.Second, 10*time.Millisecond)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("run did not stop")
			}
		})
	}
}

func TestVault_ETLBesideSync(t *testing.T) {
	cfg := testConfig(t)
	cfg.ActiveDir = ""
	syncVault := openVault(t, cfg)
	etlVault, err := OpenExtraction(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 2)
	go func() { done <- etlVault.RunETL(ctx) }()
	go func() { done <- syncVault.RunSync(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.InboxDir)
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InboxDir, "memo.txt"), []byte("quarterly memo"), 0644))

	require.Eventually(t, func() bool {
		count, err := syncVault.Index().CountObjects(context.Background(), cfg.Index.Class)
		return err == nil && count == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.FileExists(t, filepath.Join(cfg.ArchiveDir, "memo.txt"))

	cancel()
	for range 2 {
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("loops did not stop")
		}
	}
}

func TestVault_Reindex(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.ActiveDir = ""
	v := openVault(t, cfg)

	require.NoError(t, os.MkdirAll(cfg.InboxDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InboxDir, "a.txt"), []byte("alpha"), 0644))
	scanner, err := v.NewScanner()
	require.NoError(t, err)
	_, err = scanner.ScanOnce(ctx)
	require.NoError(t, err)

	syncer, err := v.NewSyncer()
	require.NoError(t, err)
	r, err := v.NewReindexer(syncer, reindex.WithProgress(nil))
	require.NoError(t, err)
	result, err := r.Run(ctx, cfg.ArchiveDir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Loaded)
}
