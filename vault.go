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
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ai/cache"
	"github.com/poiesic/docvault/ai/hashvec"
	"github.com/poiesic/docvault/ai/ollama"
	"github.com/poiesic/docvault/ai/openai"
	"github.com/poiesic/docvault/config"
	"github.com/poiesic/docvault/etl"
	"github.com/poiesic/docvault/extract"
	"github.com/poiesic/docvault/ingestion"
	"github.com/poiesic/docvault/reindex"
	"github.com/poiesic/docvault/search"
	"github.com/poiesic/docvault/storage"
	"github.com/poiesic/docvault/storage/badger"
	"github.com/poiesic/docvault/storage/weaviate"
)

var (
	// ErrNoActiveDir is returned when the live-document stage is requested but
	// no active directory is configured.
	ErrNoActiveDir = errors.New("no active directory configured")

	// ErrNoIndex is returned by the index-backed factories of a vault opened
	// with OpenExtraction.
	ErrNoIndex = errors.New("vault was opened without a vector index")
)

type Vault struct {
	config    *config.Config
	index     storage.VectorIndex
	marks     storage.WatermarkStore
	embedder  ai.Embedder
	extractor extract.Extractor
	logger    *slog.Logger
}

// Option configures a Vault.
type Option func(*vaultOptions)

type vaultOptions struct {
	logger    *slog.Logger
	embedder  ai.Embedder
	extractor extract.Extractor
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *vaultOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEmbedder replaces the vector generator selected by the configuration.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *vaultOptions) {
		o.embedder = embedder
	}
}

// WithExtractor replaces the built-in format dispatcher.
func WithExtractor(extractor extract.Extractor) Option {
	return func(o *vaultOptions) {
		o.extractor = extractor
	}
}

// Open validates cfg and opens the configured index and vector generator.
func Open(cfg *config.Config, opts ...Option) (*Vault, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, options := newVault(cfg, opts)

	switch cfg.Index.Backend {
	case config.IndexWeaviate:
		client, err := weaviate.New(cfg.Index.WeaviateURL, weaviate.WithLogger(v.logger))
		if err != nil {
			return nil, err
		}
		v.index = client
	default:
		backend, err := badger.OpenBackend(cfg.Index.DataDir, false)
		if err != nil {
			return nil, err
		}
		v.index = badger.NewVectorIndex(backend)
		v.marks = badger.NewWatermarkRepository(backend)
	}

	v.embedder = options.embedder
	if v.embedder == nil {
		embedder, err := NewEmbedder(cfg.Embedder(), v.logger)
		if err != nil {
			v.Close()
			return nil, err
		}
		v.embedder = embedder
	}
	return v, nil
}

// OpenExtraction prepares a vault for the extraction stage only. It checks
// the settings that stage reads and opens neither the index nor the vector
// generator, so it can run beside a sync process that holds the embedded
// index. Index-backed factories return ErrNoIndex.
func OpenExtraction(cfg *config.Config, opts ...Option) (*Vault, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.ValidateExtraction(); err != nil {
		return nil, err
	}
	v, _ := newVault(cfg, opts)
	return v, nil
}

func newVault(cfg *config.Config, opts []Option) (*Vault, *vaultOptions) {
	options := &vaultOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	v := &Vault{config: cfg, logger: options.logger}
	v.extractor = options.extractor
	if v.extractor == nil {
		v.extractor = extract.NewDispatcher(extract.WithLogger(v.logger))
	}
	return v, options
}

// NewEmbedder builds the vector generator described by cfg, wrapped in an
// LRU cache when cfg.CacheSize is positive.
func NewEmbedder(cfg *ai.Config, logger *slog.Logger) (ai.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		embedder ai.Embedder
		err      error
	)
	switch cfg.Provider {
	case ai.ProviderOllama:
		embedder, err = ollama.NewEmbedder(cfg, ollama.WithLogger(logger))
	case ai.ProviderOpenAI:
		embedder, err = openai.NewEmbedder(cfg)
	case ai.ProviderHash:
		embedder = hashvec.New(cfg.Dimension)
	default:
		err = fmt.Errorf("%w: %q", ai.ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheSize > 0 {
		return cache.New(embedder, cfg.CacheSize)
	}
	return embedder, nil
}

// Close releases the index and, for the embedded backend, its storage.
func (v *Vault) Close() error {
	if v.index == nil {
		return nil
	}
	if err := v.index.Close(); err != nil {
		v.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}

func (v *Vault) Config() *config.Config {
	return v.config
}

// Index returns the vector index, or nil for an extraction-only vault.
func (v *Vault) Index() storage.VectorIndex {
	return v.index
}

func (v *Vault) Embedder() ai.Embedder {
	return v.embedder
}

// WatermarkStore returns the durable watermark store, or nil when the index
// backend has none and watermarks live in memory only.
func (v *Vault) WatermarkStore() storage.WatermarkStore {
	return v.marks
}

func (v *Vault) NewProcessor(opts ...etl.Option) (*etl.Processor, error) {
	opts = append([]etl.Option{etl.WithLogger(v.logger)}, opts...)
	return etl.NewProcessor(v.config.Dirs(), v.extractor, opts...)
}

func (v *Vault) NewScanner(opts ...etl.Option) (*etl.Scanner, error) {
	processor, err := v.NewProcessor(opts...)
	if err != nil {
		return nil, err
	}
	return etl.NewScanner(processor), nil
}

func (v *Vault) NewSyncer(opts ...ingestion.Option) (*ingestion.Syncer, error) {
	if v.index == nil {
		return nil, ErrNoIndex
	}
	opts = append([]ingestion.Option{
		ingestion.WithClass(v.config.Index.Class),
		ingestion.WithLogger(v.logger),
	}, opts...)
	return ingestion.NewSyncer(v.index, v.embedder, opts...)
}

func (v *Vault) NewActiveScanner(syncer *ingestion.Syncer) (*ingestion.ActiveScanner, error) {
	if v.config.ActiveDir == "" {
		return nil, ErrNoActiveDir
	}
	return ingestion.NewActiveScanner(syncer, v.config.ActiveDir, v.config.ActiveExtensions)
}

func (v *Vault) NewReindexer(syncer *ingestion.Syncer, opts ...reindex.Option) (*reindex.Reindexer, error) {
	rc := reindex.DefaultConfig()
	rc.Workers = v.config.Workers
	opts = append([]reindex.Option{
		reindex.WithConfig(rc),
		reindex.WithExtractor(v.extractor),
		reindex.WithLogger(v.logger),
	}, opts...)
	return reindex.NewReindexer(syncer, opts...)
}

func (v *Vault) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if v.index == nil {
		return nil, ErrNoIndex
	}
	opts = append([]search.Option{
		search.WithClass(v.config.Index.Class),
		search.WithLogger(v.logger),
	}, opts...)
	return search.NewSearcher(v.index, v.embedder, opts...)
}
