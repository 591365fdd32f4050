package etl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ScanResult summarises one pass over the inbox.
type ScanResult struct {
	Processed int
	Failed    int
}

// Scanner walks the inbox and hands every eligible file to a Processor.
type Scanner struct {
	processor *Processor
	logger    *slog.Logger
}

// NewScanner creates a scanner for the processor's inbox.
func NewScanner(processor *Processor) *Scanner {
	return &Scanner{
		processor: processor,
		logger:    processor.logger,
	}
}

type inboxFile struct {
	path     string
	relDir   string
	filename string
}

// ScanOnce processes every non-hidden regular file under the inbox.
// A failing file is logged and left in place; it never stops the scan.
// The returned error is non-nil only when the inbox itself cannot be walked
// or ctx is cancelled.
func (s *Scanner) ScanOnce(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	inbox := s.processor.dirs.Inbox

	if err := os.MkdirAll(inbox, 0755); err != nil {
		return result, fmt.Errorf("create inbox: %w", err)
	}

	files, err := listInbox(inbox)
	if err != nil {
		return result, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := s.processor.Process(ctx, f.path, f.relDir, f.filename); err != nil {
			result.Failed++
			s.logger.Error("failed to process", "path", f.path, "err", err)
			continue
		}
		result.Processed++
	}

	if result.Processed > 0 || result.Failed > 0 {
		s.logger.Info("inbox scan complete", "processed", result.Processed, "failed", result.Failed)
	}
	return result, nil
}

func listInbox(inbox string) ([]inboxFile, error) {
	var files []inboxFile
	err := filepath.WalkDir(inbox, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == inbox {
				return err
			}
			// An unreadable subdirectory is retried on the next scan.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != inbox && isHidden(name) {
				return fs.SkipDir
			}
			return nil
		}
		if isHidden(name) || !d.Type().IsRegular() {
			return nil
		}
		relDir, err := filepath.Rel(inbox, filepath.Dir(path))
		if err != nil {
			return err
		}
		if relDir == "." {
			relDir = ""
		}
		files = append(files, inboxFile{path: path, relDir: relDir, filename: name})
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipDir) {
		return nil, fmt.Errorf("walk inbox: %w", err)
	}
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
