package extract

import (
	"context"
	"os"
	"strings"
)

// TextExtractor reads a file as UTF-8.
type TextExtractor struct{}

// Extract returns the file's contents with invalid UTF-8 sequences replaced by U+FFFD.
func (TextExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:     strings.ToValidUTF8(string(data), "\uFFFD"),
		Metadata: map[string]any{},
	}, nil
}
