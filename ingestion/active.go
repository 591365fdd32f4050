package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// DefaultActiveExtensions are the live-tree file types that get synced.
var DefaultActiveExtensions = []string{".md", ".txt"}

// RescanResult summarises one pass over the live tree.
type RescanResult struct {
	Synced    int
	Unchanged int
	Skipped   int
	Failed    int
}

// ActiveScanner re-syncs files of a live document tree.
type ActiveScanner struct {
	syncer     *Syncer
	root       string
	extensions map[string]struct{}
}

// NewActiveScanner creates a re-scanner for root. Extensions are matched
// case-insensitively; nil selects DefaultActiveExtensions.
func NewActiveScanner(syncer *Syncer, root string, extensions []string) (*ActiveScanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve active dir: %w", err)
	}
	if extensions == nil {
		extensions = DefaultActiveExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &ActiveScanner{syncer: syncer, root: abs, extensions: exts}, nil
}

// Root returns the absolute path of the live tree.
func (a *ActiveScanner) Root() string {
	return a.root
}

// Rescan syncs every supported file whose modification time is newer than
// its watermark. A watermark advances only after a successful upsert, so a
// failed file is retried on the next pass. Watermarks of files that no longer
// exist are dropped.
func (a *ActiveScanner) Rescan(ctx context.Context, marks *Watermarks) (RescanResult, error) {
	var result RescanResult
	seen := make(map[string]struct{})

	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == a.root {
				if errors.Is(err, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return err
			}
			a.syncer.logger.Warn("cannot read active path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if _, ok := a.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[path] = struct{}{}

		info, err := d.Info()
		if err != nil {
			result.Failed++
			a.syncer.logger.Error("failed to stat active file", "path", path, "err", err)
			return nil
		}
		modTime := info.ModTime()
		if !marks.Stale(path, modTime) {
			result.Unchanged++
			return nil
		}

		switch err := a.syncFile(ctx, path); {
		case errors.Is(err, ErrEmptyText):
			result.Skipped++
			marks.Advance(path, modTime)
		case err != nil:
			result.Failed++
			a.syncer.logger.Error("failed to sync active file", "path", path, "err", err)
		default:
			result.Synced++
			marks.Advance(path, modTime)
			a.syncer.logger.Info("synced active file", "path", path)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	marks.Retain(seen)
	return result, nil
}

// syncFile upserts the file under its path identifier. created_at is kept
// from the existing object when there is one.
func (a *ActiveScanner) syncFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	if text == "" {
		return ErrEmptyText
	}
	checksum, err := core.Checksum(bytes.NewReader(data))
	if err != nil {
		return err
	}

	s := a.syncer
	id := core.PathID(path)
	now := core.Timestamp(s.now())
	createdAt := now
	existing, err := s.index.GetObject(ctx, s.class, id)
	switch {
	case err == nil && existing.Properties[core.PropCreatedAt] != "":
		createdAt = existing.Properties[core.PropCreatedAt]
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		s.logger.Debug("could not read existing object", "id", id, "err", err)
	}

	return s.embedAndUpsert(ctx, &core.IndexObject{
		ID:    id,
		Class: s.class,
		Properties: map[string]string{
			core.PropText:         text,
			core.PropItemType:     core.ItemTypeActive,
			core.PropSourcePath:   path,
			core.PropArchivedPath: "",
			core.PropChecksum:     checksum,
			core.PropCreatedAt:    createdAt,
			core.PropUpdatedAt:    now,
		},
	})
}
