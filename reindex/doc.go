// Package reindex rebuilds a vector index from the archive of record.
//
// Every sidecar under the archive root is replayed through the sync stage on a
// bounded worker pool, with retry and exponential backoff around each upsert.
// Replays are idempotent: a sidecar always maps to the same object identifier.
// Archived originals whose sidecar is missing, left behind when extraction
// was interrupted between the move and the sidecar write, are re-extracted in
// place before the replay starts.
package reindex
