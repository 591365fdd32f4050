package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// DefaultClass is the collection name used when none is configured.
const DefaultClass = "Document"

// Syncer embeds units of work and upserts them into a vector index.
// It holds no per-run state and is safe for concurrent use.
type Syncer struct {
	index    storage.VectorIndex
	embedder ai.Embedder
	class    string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer) error

// WithClass sets the collection objects are written to.
func WithClass(class string) Option {
	return func(s *Syncer) error {
		if class == "" {
			return core.ErrMissingClass
		}
		s.class = class
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		s.now = now
		return nil
	}
}

// NewSyncer creates a sync stage over index using embedder for vectors.
func NewSyncer(index storage.VectorIndex, embedder ai.Embedder, opts ...Option) (*Syncer, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	s := &Syncer{
		index:    index,
		embedder: embedder,
		class:    DefaultClass,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "sync")
	return s, nil
}

// Class returns the collection the syncer writes to.
func (s *Syncer) Class() string {
	return s.class
}

// LoadSidecar reads and decodes a sidecar file.
func LoadSidecar(path string) (*core.Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sidecar core.Sidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrInvalidSidecar, path, err)
	}
	return &sidecar, nil
}

// IngestSidecarFile loads the sidecar at path and upserts it. The path stands
// in for a missing id.
func (s *Syncer) IngestSidecarFile(ctx context.Context, path string) (string, error) {
	sidecar, err := LoadSidecar(path)
	if err != nil {
		return "", err
	}
	return s.IngestSidecar(ctx, sidecar, path)
}

// IngestSidecar embeds sidecar.Text and upserts it under its normalized id,
// which is returned. Sidecars without text return ErrEmptyText before the
// embedder is called.
func (s *Syncer) IngestSidecar(ctx context.Context, sidecar *core.Sidecar, fallbackID string) (string, error) {
	id := core.NormalizeID(sidecar.ID, fallbackID)
	if sidecar.Text == "" {
		return id, ErrEmptyText
	}

	now := core.Timestamp(s.now())
	itemType := sidecar.ItemType
	if itemType == "" {
		itemType = core.ItemTypeUnknown
	}
	createdAt := sidecar.CreatedAt
	if createdAt == "" {
		createdAt = now
	}

	obj := &core.IndexObject{
		ID:    id,
		Class: s.class,
		Properties: map[string]string{
			core.PropText:         sidecar.Text,
			core.PropItemType:     itemType,
			core.PropSourcePath:   sidecar.SourcePath,
			core.PropArchivedPath: sidecar.ArchivedPath,
			core.PropChecksum:     sidecar.Checksum,
			core.PropCreatedAt:    createdAt,
			core.PropUpdatedAt:    now,
		},
	}
	return id, s.embedAndUpsert(ctx, obj)
}

// embedAndUpsert fills obj.Vector from its text and writes it.
func (s *Syncer) embedAndUpsert(ctx context.Context, obj *core.IndexObject) error {
	vector, err := s.embedder.EmbedText(ctx, obj.Properties[core.PropText])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	obj.Vector = vector
	if err := s.index.Upsert(ctx, obj); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpsert, obj.ID, err)
	}
	return nil
}
