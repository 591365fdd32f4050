// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/etl"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/ingestion"
)

// Config holds configuration for a reindex run.
type Config struct {
	// Workers is the number of sidecars replayed concurrently
	Workers int

	// ReportInterval is how often to report progress (number of sidecars)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per sidecar
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Repair re-extracts archived originals that have no sidecar
	Repair bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:        max(runtime.NumCPU()/2, 1),
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Repair:         true,
	}
}

// Result summarises a reindex run.
type Result struct {
	Loaded   int
	Skipped  int
	Failed   int
	Repaired int

	// Errors joins the per-file failures, nil when there were none.
	Errors error
}

// Reindexer replays the archive of record into the vector index.
type Reindexer struct {
	syncer    *ingestion.Syncer
	extractor extract.Extractor
	config    *Config
	progress  io.Writer
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Reindexer.
type Option func(*Reindexer) error

// WithConfig replaces the default run configuration.
func WithConfig(config *Config) Option {
	return func(r *Reindexer) error {
		if config == nil {
			return fmt.Errorf("config cannot be nil")
		}
		r.config = config
		return nil
	}
}

// WithExtractor sets the extractor used to repair orphaned originals.
// Without one, orphans are only reported.
func WithExtractor(extractor extract.Extractor) Option {
	return func(r *Reindexer) error {
		r.extractor = extractor
		return nil
	}
}

// WithProgress sets where progress lines are written. Nil discards them.
func WithProgress(w io.Writer) Option {
	return func(r *Reindexer) error {
		if w == nil {
			w = io.Discard
		}
		r.progress = w
		return nil
	}
}

// WithClock replaces the time source used for repaired sidecars.
func WithClock(now func() time.Time) Option {
	return func(r *Reindexer) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		r.now = now
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reindexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReindexer creates a reindexer that replays through syncer.
func NewReindexer(syncer *ingestion.Syncer, opts ...Option) (*Reindexer, error) {
	if syncer == nil {
		return nil, ErrSyncerRequired
	}
	r := &Reindexer{
		syncer:   syncer,
		config:   DefaultConfig(),
		progress: io.Discard,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.config.Workers < 1 {
		r.config.Workers = 1
	}
	if r.config.MaxRetries < 1 {
		r.config.MaxRetries = 1
	}
	r.logger = r.logger.With("component", "reindex")
	return r, nil
}

// Run reconciles the schema, repairs orphans and replays every sidecar under
// archiveDir. Per-file failures are counted and joined into Result.Errors; the
// returned error is reserved for schema failures, an unreadable archive and
// cancellation.
func (r *Reindexer) Run(ctx context.Context, archiveDir string) (Result, error) {
	var result Result
	if archiveDir == "" {
		return result, ErrArchiveRequired
	}
	if _, err := r.syncer.EnsureSchema(ctx); err != nil {
		return result, err
	}

	inv, err := Survey(ctx, archiveDir)
	if err != nil {
		return result, err
	}

	var failures []error
	if len(inv.Orphans) > 0 {
		repaired, errs := r.repairOrphans(ctx, archiveDir, inv.Orphans)
		result.Repaired = len(repaired)
		result.Failed += len(errs)
		failures = append(failures, errs...)
		inv.Sidecars = append(inv.Sidecars, repaired...)
	}

	total := len(inv.Sidecars)
	if total == 0 {
		fmt.Fprintf(r.progress, "No sidecars found under %s\n", archiveDir)
		result.Errors = errors.Join(failures...)
		return result, ctx.Err()
	}
	fmt.Fprintf(r.progress, "Replaying %d sidecars (workers: %d)\n", total, r.config.Workers)

	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return result, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			result.Loaded++
		case errors.Is(err, ingestion.ErrEmptyText):
			result.Skipped++
			r.logger.Info("skipping sidecar without text", "path", path)
		default:
			result.Failed++
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			r.logger.Error("failed to replay sidecar", "path", path, "err", err)
		}
	}

	for _, path := range inv.Sidecars {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			record(path, r.replay(ctx, path))
			tracker.Increment(1)
		})
		if submitErr != nil {
			wg.Done()
			record(path, submitErr)
		}
	}
	wg.Wait()
	tracker.Finish()

	result.Errors = errors.Join(failures...)
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Loaded %d, skipped %d, failed %d, repaired %d in %v\n",
		result.Loaded, result.Skipped, result.Failed, result.Repaired, elapsed.Round(time.Millisecond))
	r.logger.Info("reindex complete",
		"loaded", result.Loaded,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"repaired", result.Repaired,
	)
	return result, ctx.Err()
}

// replay ingests one sidecar file, retrying transient failures.
func (r *Reindexer) replay(ctx context.Context, path string) error {
	return RetryWithBackoff(ctx, func() error {
		_, err := r.syncer.IngestSidecarFile(ctx, path)
		if errors.Is(err, ingestion.ErrEmptyText) ||
			errors.Is(err, core.ErrInvalidSidecar) ||
			errors.Is(err, os.ErrNotExist) {
			return Permanent(err)
		}
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
}

// repairOrphans re-extracts each original in place and writes its sidecar.
// It returns the sidecar paths written and the failures.
func (r *Reindexer) repairOrphans(ctx context.Context, root string, orphans []string) ([]string, []error) {
	if !r.config.Repair || r.extractor == nil {
		for _, path := range orphans {
			r.logger.Warn("archived original has no sidecar", "path", path)
		}
		return nil, nil
	}

	var (
		written []string
		errs    []error
	)
	for _, path := range orphans {
		if ctx.Err() != nil {
			break
		}
		sidecarPath, err := r.repair(ctx, root, path)
		if err != nil {
			r.logger.Error("failed to repair orphan", "path", path, "err", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrRepair, path, err))
			continue
		}
		r.logger.Info("repaired orphan", "path", path, "sidecar", sidecarPath)
		written = append(written, sidecarPath)
	}
	return written, errs
}

func (r *Reindexer) repair(ctx context.Context, root, original string) (string, error) {
	sidecarPath := sidecarPathFor(original)
	if exists(sidecarPath) {
		return sidecarPath, nil
	}
	result, err := r.extractor.Extract(ctx, original)
	if err != nil {
		return "", err
	}
	checksum, err := core.ChecksumFile(original)
	if err != nil {
		return "", err
	}
	// The inbox path is lost once the move completed.
	sidecar := etl.BuildSidecar(original, original, itemTypeOf(root, original), checksum, result, r.now())
	if err := etl.WriteJSONAtomic(sidecarPath, sidecar); err != nil {
		return "", err
	}
	return sidecarPath, nil
}
