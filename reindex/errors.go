package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrSyncerRequired is returned when no sync stage is supplied.
	ErrSyncerRequired = errors.New("syncer is required")

	// ErrArchiveRequired is returned when the archive directory is empty.
	ErrArchiveRequired = errors.New("archive directory is required")

	// ErrRepair wraps failures re-extracting an orphaned original.
	ErrRepair = errors.New("orphan repair failed")
)
