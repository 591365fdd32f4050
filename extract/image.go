package extract

import "context"

// ImageExtractor OCRs an image with tesseract.
type ImageExtractor struct {
	runner CommandRunner
}

// NewImageExtractor creates an image strategy.
func NewImageExtractor(runner CommandRunner) *ImageExtractor {
	return &ImageExtractor{runner: runner}
}

// Extract returns tesseract's recognised text unchanged.
func (e *ImageExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	out, err := e.runner.Run(ctx, "tesseract", path, "stdout")
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:     string(out),
		Metadata: map[string]any{"format": string(FormatImage)},
	}, nil
}
