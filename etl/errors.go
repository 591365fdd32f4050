package etl

import "errors"

var (
	// ErrOverlappingDirs reports directory roles that coincide or nest.
	ErrOverlappingDirs = errors.New("directory roles overlap")

	// ErrExtraction wraps failures of a format strategy.
	ErrExtraction = errors.New("extraction failed")

	// ErrArchive wraps failures moving an original into the archive.
	ErrArchive = errors.New("archive move failed")

	// ErrSidecarWrite wraps failures writing the archived sidecar.
	ErrSidecarWrite = errors.New("sidecar write failed")

	// ErrStage wraps failures copying a sidecar into the staging queue.
	ErrStage = errors.New("staging copy failed")
)
