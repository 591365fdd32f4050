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


package badger

import (
	"context"
	"errors"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// maxConflictRetries bounds how often a write is retried after a transaction conflict.
const maxConflictRetries = 3

// VectorIndex implements storage.VectorIndex on top of BadgerDB.
// Similarity search is a brute-force cosine scan over the class.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex using backend.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{
		backend: backend,
	}
}

// Close closes the underlying backend.
func (v *VectorIndex) Close() error {
	if v.backend.IsClosed() {
		return nil
	}
	return v.backend.Close()
}

// GetCollection retrieves the schema of class.
func (v *VectorIndex) GetCollection(ctx context.Context, class string) (*core.Collection, error) {
	if v.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.Collection
	err := v.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readCollection(tx, class)
		return err
	})
	return result, err
}

// CreateCollection registers a new class.
func (v *VectorIndex) CreateCollection(ctx context.Context, collection *core.Collection) error {
	if collection == nil || collection.Class == "" {
		return core.ErrMissingClass
	}
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.update(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(collection.Class))
		if err == nil {
			return storage.ErrCollectionExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Set(makeCollectionKey(collection.Class), storage.MarshalCollection(collection))
	})
}

// AddProperty appends property to an existing class.
func (v *VectorIndex) AddProperty(ctx context.Context, class string, property core.Property) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.update(func(tx *badger.Txn) error {
		collection, err := readCollection(tx, class)
		if err != nil {
			return err
		}
		if collection.HasProperty(property.Name) {
			return storage.ErrPropertyExists
		}
		collection.Properties = append(collection.Properties, property)
		return tx.Set(makeCollectionKey(class), storage.MarshalCollection(collection))
	})
}

// Upsert creates or replaces obj. The class must already exist.
func (v *VectorIndex) Upsert(ctx context.Context, obj *core.IndexObject) error {
	if err := core.ValidateIndexObject(obj); err != nil {
		return err
	}
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.update(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionKey(obj.Class)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrCollectionNotFound
			}
			return err
		}
		return tx.Set(makeObjectKey(obj.Class, obj.ID), storage.MarshalIndexObject(obj))
	})
}

// GetObject retrieves a single object by ID.
func (v *VectorIndex) GetObject(ctx context.Context, class, id string) (*core.IndexObject, error) {
	if v.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var result *core.IndexObject
	err := v.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObjectKey(class, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalIndexObject(val)
			return err
		})
	})
	return result, err
}

// FindSimilar scans every object of class and returns the limit closest to vector.
func (v *VectorIndex) FindSimilar(ctx context.Context, class string, vector []float32, limit int) ([]*core.SearchHit, error) {
	if len(vector) == 0 {
		return nil, core.ErrEmptyVector
	}
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if v.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var results []*core.SearchHit
	err := v.backend.View(func(tx *badger.Txn) error {
		return iteratePrefix(tx, makeObjectClassPrefix(class), func(_, val []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obj, err := storage.UnmarshalIndexObject(val)
			if err != nil {
				return err
			}
			if len(obj.Vector) == 0 {
				return nil
			}
			similarity := cosineSimilarity(vector, obj.Vector)
			results = append(results, &core.SearchHit{
				Object:   obj,
				Score:    similarity,
				Distance: 1 - similarity,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchHit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountObjects returns the number of objects stored in class.
func (v *VectorIndex) CountObjects(ctx context.Context, class string) (int, error) {
	if v.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := v.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeObjectClassPrefix(class)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// update runs fn in a write transaction, retrying on conflicts.
func (v *VectorIndex) update(fn func(tx *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = v.backend.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func readCollection(tx *badger.Txn, class string) (*core.Collection, error) {
	item, err := tx.Get(makeCollectionKey(class))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrCollectionNotFound
		}
		return nil, err
	}
	var collection *core.Collection
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		collection, unmarshalErr = storage.UnmarshalCollection(val)
		return unmarshalErr
	})
	return collection, err
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length are compared over their common prefix.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
