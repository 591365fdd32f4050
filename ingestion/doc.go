// Package ingestion implements the sync stage of the document pipeline.
//
// A Syncer turns units of work into vectors and upserts them into a
// storage.VectorIndex:
//   - EnsureSchema reconciles the index collection at startup, adding missing
//     fields without ever removing or retyping existing ones
//   - DrainStaging consumes sidecar files from the staging queue, deleting
//     each one only after its upsert succeeded
//   - ActiveScanner re-syncs files of the live document tree whose
//     modification time advanced past their Watermarks entry
//
// Delivery is at-least-once. Upserts are keyed by stable identifiers, so
// replaying a unit of work leaves the index unchanged.
package ingestion
