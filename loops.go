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


package docvault

import (
	"context"
	"fmt"
	"os"

	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/poll"
	"golang.org/x/sync/errgroup"
)

// RunETL drains the inbox every poll interval until ctx is done.
func (v *Vault) RunETL(ctx context.Context) error {
	dirs := v.config.Dirs()
	for _, dir := range []string{dirs.Inbox, dirs.Archive, dirs.Staging} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	scanner, err := v.NewScanner()
	if err != nil {
		return err
	}

	opts, err := v.loopOptions(ctx, "etl", dirs.Inbox)
	if err != nil {
		return err
	}
	return poll.Run(ctx, v.config.PollInterval.Duration(), func(ctx context.Context) error {
		_, err := scanner.ScanOnce(ctx)
		return err
	}, opts...)
}

// SyncPass is one iteration of the sync stage.
type SyncPass struct {
	syncer *ingestion.Syncer
	active *ingestion.ActiveScanner
	marks  *ingestion.Watermarks
	vault  *Vault
}

// NewSyncPass reconciles the schema and restores the watermarks. A schema
// failure is returned; the caller should treat it as fatal.
func (v *Vault) NewSyncPass(ctx context.Context) (*SyncPass, error) {
	syncer, err := v.NewSyncer()
	if err != nil {
		return nil, err
	}
	if _, err := syncer.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	p := &SyncPass{syncer: syncer, vault: v}
	if v.config.ActiveDir != "" {
		if p.active, err = v.NewActiveScanner(syncer); err != nil {
			return nil, err
		}
		if p.marks, err = ingestion.LoadWatermarks(ctx, v.marks); err != nil {
			return nil, fmt.Errorf("load watermarks: %w", err)
		}
	}
	return p, nil
}

// Syncer returns the sync stage the pass drives.
func (p *SyncPass) Syncer() *ingestion.Syncer {
	return p.syncer
}

// Run drains the staging queue, then re-scans the live tree and persists
// the advanced watermarks.
func (p *SyncPass) Run(ctx context.Context) error {
	logger := p.vault.logger.With("component", "sync")
	drained, err := p.syncer.DrainStaging(ctx, p.vault.config.StagingDir)
	if err != nil {
		return err
	}
	if drained != (ingestion.DrainResult{}) {
		logger.Info("staging drained", "ingested", drained.Ingested, "skipped", drained.Skipped, "failed", drained.Failed)
	}

	if p.active == nil {
		return nil
	}
	rescanned, err := p.active.Rescan(ctx, p.marks)
	if err != nil {
		return err
	}
	if rescanned.Synced+rescanned.Skipped+rescanned.Failed > 0 {
		logger.Info("active tree rescanned",
			"synced", rescanned.Synced,
			"unchanged", rescanned.Unchanged,
			"skipped", rescanned.Skipped,
			"failed", rescanned.Failed,
		)
	}
	if err := ingestion.SaveWatermarks(ctx, p.vault.marks, p.marks); err != nil {
		logger.Warn("failed to persist watermarks", "err", err)
	}
	return nil
}

// RunSync reconciles the schema and then runs a sync pass every poll
// interval until ctx is done.
func (v *Vault) RunSync(ctx context.Context) error {
	pass, err := v.NewSyncPass(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(v.config.StagingDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", v.config.StagingDir, err)
	}

	watchDirs := []string{v.config.StagingDir}
	if v.config.ActiveDir != "" {
		watchDirs = append(watchDirs, v.config.ActiveDir)
	}
	opts, err := v.loopOptions(ctx, "sync", watchDirs...)
	if err != nil {
		return err
	}
	return poll.Run(ctx, v.config.PollInterval.Duration(), pass.Run, opts...)
}

// Run runs the extraction and sync loops side by side. The first loop to
// fail cancels the other.
func (v *Vault) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return v.RunETL(ctx)
	})
	g.Go(func() error {
		return v.RunSync(ctx)
	})
	return g.Wait()
}

func (v *Vault) loopOptions(ctx context.Context, name string, watchDirs ...string) ([]poll.Option, error) {
	opts := []poll.Option{poll.WithName(name), poll.WithLogger(v.logger)}
	if !v.config.Watch {
		return opts, nil
	}
	wake, err := poll.Watch(ctx, v.logger, poll.DefaultDebounce, watchDirs...)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", name, err)
	}
	return append(opts, poll.WithWake(wake)), nil
}
