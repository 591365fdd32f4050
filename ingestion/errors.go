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


package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSchemaReconcile is returned when the index schema cannot be confirmed.
	// The sync stage must not start after this error.
	ErrSchemaReconcile = errors.New("schema reconciliation failed")

	// ErrEmptyText marks a sidecar with no extractable content. It is an
	// outcome, not a failure: the sidecar is consumed without being indexed.
	ErrEmptyText = errors.New("sidecar has no text")

	// ErrEmbedding wraps failures of the vector generator.
	ErrEmbedding = errors.New("embedding failed")

	// ErrUpsert wraps failures writing to the vector index.
	ErrUpsert = errors.New("upsert failed")
)
