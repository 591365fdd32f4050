package extract

import (
	"context"
	"log/slog"
	"os"
)

// Result is the output of an extraction strategy.
type Result struct {
	// Text is the extracted plain text. It may be empty.
	Text string

	// Metadata holds format-specific fields such as email headers.
	Metadata map[string]any
}

// Extractor turns a file into text and metadata.
// Implementations must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Result, error)
}

// Dispatcher selects a strategy by file format.
type Dispatcher struct {
	strategies map[Format]Extractor
	runner     CommandRunner
	pages      PageReader
	tempDir    string
	logger     *slog.Logger
}

var _ Extractor = (*Dispatcher)(nil)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCommandRunner replaces the runner used for OCR programs.
func WithCommandRunner(runner CommandRunner) Option {
	return func(d *Dispatcher) {
		d.runner = runner
	}
}

// WithPageReader replaces the PDF page reader.
func WithPageReader(pages PageReader) Option {
	return func(d *Dispatcher) {
		d.pages = pages
	}
}

// WithTempDir sets where temporary OCR output is written.
func WithTempDir(dir string) Option {
	return func(d *Dispatcher) {
		d.tempDir = dir
	}
}

// WithStrategy overrides the extractor used for one format.
func WithStrategy(format Format, e Extractor) Option {
	return func(d *Dispatcher) {
		d.strategies[format] = e
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher with the built-in strategy table.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		strategies: make(map[Format]Extractor),
		runner:     ExecRunner{},
		pages:      LedongthucPageReader{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	defaults := map[Format]Extractor{
		FormatPDF:   NewPDFExtractor(d.runner, d.pages, d.tempDir),
		FormatImage: NewImageExtractor(d.runner),
		FormatEmail: EmailExtractor{},
		FormatText:  TextExtractor{},
	}
	for f, e := range defaults {
		if _, ok := d.strategies[f]; !ok {
			d.strategies[f] = e
		}
	}
	d.logger = d.logger.With("component", "extractor")
	return d
}

// Extract classifies path and runs the matching strategy.
func (d *Dispatcher) Extract(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	format := Classify(path)
	d.logger.Debug("extracting", "path", path, "format", format)

	result, err := d.strategies[format].Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	return result, nil
}
