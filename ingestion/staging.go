package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SidecarSuffix identifies sidecar files in the staging queue.
const SidecarSuffix = ".json"

// DrainResult summarises one pass over the staging queue.
type DrainResult struct {
	Ingested int
	Skipped  int
	Failed   int
}

// DrainStaging ingests every sidecar in dir. A sidecar is deleted only after
// a successful upsert, or when it has no text. Failures are logged and the
// file is kept for the next pass. The returned error is non-nil only when dir
// cannot be listed or ctx is cancelled.
func (s *Syncer) DrainStaging(ctx context.Context, dir string) (DrainResult, error) {
	var result DrainResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("list staging: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, SidecarSuffix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		path := filepath.Join(dir, name)
		id, err := s.IngestSidecarFile(ctx, path)
		switch {
		case errors.Is(err, ErrEmptyText):
			s.logger.Info("skipping sidecar without text", "path", path, "id", id)
			result.Skipped++
		case err != nil:
			s.logger.Error("failed to ingest staging file", "path", path, "err", err)
			result.Failed++
			continue
		default:
			s.logger.Info("ingested staging file", "path", path, "id", id)
			result.Ingested++
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove consumed staging file", "path", path, "err", err)
		}
	}
	return result, nil
}
