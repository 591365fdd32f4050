package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/extract"
)

// Dirs names the directory roles of the extraction stage.
type Dirs struct {
	Inbox   string
	Archive string
	Staging string
}

// Validate checks that every role is set and that no role shares a path
// with another or sits inside it.
func (d Dirs) Validate() error {
	roles := []struct{ name, dir string }{
		{"inbox", d.Inbox},
		{"archive", d.Archive},
		{"staging", d.Staging},
	}
	for i, role := range roles {
		if role.dir == "" {
			return fmt.Errorf("%s directory is required", role.name)
		}
		for _, other := range roles[:i] {
			if Overlap(other.dir, role.dir) {
				return fmt.Errorf("%w: %s %s and %s %s", ErrOverlappingDirs, other.name, other.dir, role.name, role.dir)
			}
		}
	}
	return nil
}

// Overlap reports whether a and b name the same directory or one contains
// the other. Relative paths are resolved against the working directory.
func Overlap(a, b string) bool {
	a, b = absPath(a), absPath(b)
	return contains(a, b) || contains(b, a)
}

func contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func absPath(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// Processor archives one inbox file and emits its sidecar.
type Processor struct {
	dirs      Dirs
	extractor extract.Extractor
	now       func() time.Time
	logger    *slog.Logger
}

// Option is a functional option for configuring a Processor.
type Option func(*Processor) error

// WithLogger sets a custom logger for the processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		p.logger = logger
		return nil
	}
}

// WithClock replaces the time source used for sidecar timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		p.now = now
		return nil
	}
}

// NewProcessor creates a new extraction processor.
func NewProcessor(dirs Dirs, extractor extract.Extractor, opts ...Option) (*Processor, error) {
	if err := dirs.Validate(); err != nil {
		return nil, err
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	p := &Processor{
		dirs:      dirs,
		extractor: extractor,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "etl")
	return p, nil
}

// Dirs returns the processor's directory roles.
func (p *Processor) Dirs() Dirs {
	return p.dirs
}

// ItemType derives the classification tag from the first segment of relDir.
func ItemType(relDir string) string {
	relDir = filepath.ToSlash(filepath.Clean(relDir))
	if relDir == "." || relDir == "" {
		return core.ItemTypeUnknown
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(relDir, "/"), "/")
	if first == "" {
		return core.ItemTypeUnknown
	}
	return first
}

// SidecarName returns the sidecar file name for an original named filename.
// A .json original would collide with its own sidecar, so it gets a .sidecar.json name.
func SidecarName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := stem + ".json"
	if name == filename {
		name = stem + ".sidecar.json"
	}
	return name
}

// BuildSidecar assembles the record of an original that will live at archivedPath.
func BuildSidecar(sourcePath, archivedPath, itemType, checksum string, result *extract.Result, now time.Time) *core.Sidecar {
	ts := core.Timestamp(now)
	metadata := result.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &core.Sidecar{
		ID:               core.ContentID(archivedPath, checksum),
		SourcePath:       sourcePath,
		ArchivedPath:     archivedPath,
		ItemType:         itemType,
		OriginalFilename: filepath.Base(sourcePath),
		Checksum:         checksum,
		CreatedAt:        ts,
		UpdatedAt:        ts,
		Text:             result.Text,
		Metadata:         metadata,
	}
}

// Process extracts filePath, moves it under the archive mirror of relDir,
// writes the sidecar beside it and stages a copy. The move is the commit
// point: a failure before it leaves filePath in the inbox for the next scan.
func (p *Processor) Process(ctx context.Context, filePath, relDir, filename string) (*core.Sidecar, error) {
	itemType := ItemType(relDir)
	archiveSubdir := filepath.Join(p.dirs.Archive, relDir)
	if err := os.MkdirAll(archiveSubdir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	if err := os.MkdirAll(p.dirs.Staging, 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStage, err)
	}
	archivedPath := filepath.Join(archiveSubdir, filename)

	result, err := p.extractor.Extract(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	checksum, err := core.ChecksumFile(filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: checksum: %w", ErrExtraction, err)
		}
		p.logger.Warn("file vanished before checksum, identifier derived from path only", "path", filePath)
		checksum = ""
	}

	sidecar := BuildSidecar(filePath, archivedPath, itemType, checksum, result, p.now())

	if err := MoveFile(filePath, archivedPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}

	sidecarName := SidecarName(filename)
	sidecarPath := filepath.Join(archiveSubdir, sidecarName)
	if err := WriteJSONAtomic(sidecarPath, sidecar); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSidecarWrite, sidecarPath, err)
	}

	stagingPath := p.stagingPath(sidecarName, sidecar.ID)
	if err := CopyFileAtomic(sidecarPath, stagingPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStage, stagingPath, err)
	}

	p.logger.Info("archived",
		"path", filePath,
		"archived_path", archivedPath,
		"staging_path", stagingPath,
		"item_type", itemType,
		"chars", len(sidecar.Text),
	)
	return sidecar, nil
}

// stagingPath names the queue entry after the document. An unconsumed entry
// from another document with the same name is never overwritten.
func (p *Processor) stagingPath(sidecarName, id string) string {
	path := filepath.Join(p.dirs.Staging, sidecarName)
	if _, err := os.Stat(path); err != nil {
		return path
	}
	stem := strings.TrimSuffix(sidecarName, ".json")
	return filepath.Join(p.dirs.Staging, stem+"."+id+".json")
}
