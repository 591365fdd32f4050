package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// EnsureSchema makes the syncer's collection carry every required field.
// A missing collection is created with no server-side vectorizer; an existing
// one only gains the fields it lacks. The names of added fields are returned.
func (s *Syncer) EnsureSchema(ctx context.Context) ([]string, error) {
	required := core.RequiredProperties()

	collection, err := s.index.GetCollection(ctx, s.class)
	if errors.Is(err, storage.ErrCollectionNotFound) {
		err = s.index.CreateCollection(ctx, &core.Collection{
			Class:      s.class,
			Vectorizer: core.VectorizerNone,
			Properties: required,
		})
		if err == nil {
			s.logger.Info("created collection", "class", s.class, "properties", len(required))
			return nil, nil
		}
		if !errors.Is(err, storage.ErrCollectionExists) {
			return nil, fmt.Errorf("%w: create %s: %w", ErrSchemaReconcile, s.class, err)
		}
		// Another writer created it first; reconcile against theirs.
		collection, err = s.index.GetCollection(ctx, s.class)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrSchemaReconcile, s.class, err)
	}

	var added []string
	for _, prop := range required {
		if collection.HasProperty(prop.Name) {
			continue
		}
		err := s.index.AddProperty(ctx, s.class, prop)
		if err != nil && !errors.Is(err, storage.ErrPropertyExists) {
			return added, fmt.Errorf("%w: add %s.%s: %w", ErrSchemaReconcile, s.class, prop.Name, err)
		}
		added = append(added, prop.Name)
		s.logger.Info("added property", "class", s.class, "property", prop.Name)
	}
	return added, nil
}
