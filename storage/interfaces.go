package storage

import (
	"context"

	"github.com/poiesic/docvault/core"
)

// SchemaManager inspects and evolves collection schemas.
type SchemaManager interface {
	// GetCollection returns the schema of class.
	// Returns ErrCollectionNotFound if the class does not exist.
	GetCollection(ctx context.Context, class string) (*core.Collection, error)

	// CreateCollection creates a class with the given fields.
	// Returns ErrCollectionExists if it is already present.
	CreateCollection(ctx context.Context, collection *core.Collection) error

	// AddProperty adds one field to an existing class. Existing fields are never
	// removed or retyped.
	AddProperty(ctx context.Context, class string, property core.Property) error
}

// ObjectStore stores vectors and their properties.
type ObjectStore interface {
	// Upsert creates or fully replaces the object with obj.ID in obj.Class.
	// Upserting the same ID twice leaves exactly one object.
	Upsert(ctx context.Context, obj *core.IndexObject) error

	// GetObject retrieves a single object.
	// Returns ErrNotFound if it doesn't exist.
	GetObject(ctx context.Context, class, id string) (*core.IndexObject, error)

	// FindSimilar returns up to limit objects nearest to vector, best first.
	FindSimilar(ctx context.Context, class string, vector []float32, limit int) ([]*core.SearchHit, error)

	// CountObjects returns the number of objects stored in class.
	CountObjects(ctx context.Context, class string) (int, error)
}

// VectorIndex is the full vector store port used by the sync stage.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	SchemaManager
	ObjectStore

	// Close releases resources held by the index.
	Close() error
}

// WatermarkStore persists snapshots of the active re-scanner's watermarks.
type WatermarkStore interface {
	// SaveWatermarks replaces the stored snapshot with entries.
	SaveWatermarks(ctx context.Context, entries []core.WatermarkEntry) error

	// LoadWatermarks returns the last saved snapshot, or nil if none exists.
	LoadWatermarks(ctx context.Context) ([]core.WatermarkEntry, error)
}
