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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// WatermarkRepository implements storage.WatermarkStore for BadgerDB.
type WatermarkRepository struct {
	backend  *Backend
	snapshot string
}

var _ storage.WatermarkStore = (*WatermarkRepository)(nil)

// NewWatermarkRepository creates a new WatermarkRepository.
func NewWatermarkRepository(backend *Backend) *WatermarkRepository {
	return &WatermarkRepository{
		backend:  backend,
		snapshot: watermarkSnapshot,
	}
}

// SaveWatermarks replaces the persisted snapshot with entries.
func (r *WatermarkRepository) SaveWatermarks(ctx context.Context, entries []core.WatermarkEntry) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		var stale [][]byte
		err := iteratePrefix(tx, makeWatermarkPrefix(r.snapshot), func(key, _ []byte) error {
			stale = append(stale, key)
			return nil
		})
		if err != nil {
			return err
		}
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if err := tx.Set(makeWatermarkKey(r.snapshot, e.Path), storage.MarshalWatermarkEntry(e)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadWatermarks retrieves the persisted snapshot.
// Returns nil, nil if nothing has been saved.
func (r *WatermarkRepository) LoadWatermarks(ctx context.Context) ([]core.WatermarkEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var entries []core.WatermarkEntry
	err := r.backend.View(func(tx *badger.Txn) error {
		return iteratePrefix(tx, makeWatermarkPrefix(r.snapshot), func(_, val []byte) error {
			e, err := storage.UnmarshalWatermarkEntry(val)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}
