package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageReader returns the plain text of every page of a PDF, in page order.
type PageReader interface {
	ReadPages(path string) ([]string, error)
}

// LedongthucPageReader reads page text with github.com/ledongthuc/pdf.
type LedongthucPageReader struct{}

var _ PageReader = LedongthucPageReader{}

// ReadPages extracts each page's text. Pages that fail to decode yield "".
func (LedongthucPageReader) ReadPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// PDFExtractor OCRs a PDF into a temporary searchable copy and reads its pages.
type PDFExtractor struct {
	runner  CommandRunner
	pages   PageReader
	tempDir string
}

// NewPDFExtractor creates a PDF strategy. An empty tempDir uses os.TempDir.
func NewPDFExtractor(runner CommandRunner, pages PageReader, tempDir string) *PDFExtractor {
	return &PDFExtractor{runner: runner, pages: pages, tempDir: tempDir}
}

// Extract runs ocrmypdf on path and joins the per-page text with newlines.
// The OCR output is removed whether or not extraction succeeds.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	tmp, err := os.CreateTemp(e.tempDir, "docvault-ocr-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create ocr output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	_, err = e.runner.Run(ctx, "ocrmypdf",
		"--optimize", "1",
		"--rotate-pages",
		"--skip-text",
		"--output-type", "pdf",
		path, tmpPath,
	)
	if err != nil {
		return nil, err
	}

	pages, err := e.pages.ReadPages(tmpPath)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:     strings.Join(pages, "\n"),
		Metadata: map[string]any{"format": string(FormatPDF), "pages": len(pages)},
	}, nil
}
