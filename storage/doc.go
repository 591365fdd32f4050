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


// Package storage provides the vector index abstraction for docvault.
//
// This package defines the port the sync stage writes through. The index is
// treated as a schema + upsert + nearest-neighbour service, so the pipeline can
// run against an embedded BadgerDB store or a remote Weaviate instance
// interchangeably.
//
// # Constructor Return Type Pattern
//
// Backend constructors return concrete types that satisfy storage.VectorIndex:
//
//	idx := badger.NewVectorIndex(backend)              // *badger.VectorIndex
//	idx, err := weaviate.New("http://weaviate:8080")   // *weaviate.Client
//
// # Architecture
//
//   - SchemaManager: collection lookup, creation and additive field migration
//   - ObjectStore: idempotent upsert by ID, point lookup, similarity search
//   - VectorIndex: SchemaManager + ObjectStore + Close
//   - WatermarkStore: optional durable snapshots of re-scanner watermarks
//
// # Idempotence
//
// Upsert is keyed on (class, ID). Replaying the same object any number of times
// leaves exactly one entry carrying the latest properties and vector; this is
// what makes at-least-once delivery from the staging queue safe.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
