package ai

import "context"

// Embedder turns extracted document text into a fixed-length vector. The
// sync stage, the active rescanner and search all embed one text at a time;
// vectors from different embedders are not comparable, so an index must be
// rebuilt when the embedder changes. Implementations are safe for concurrent
// use by the reindex workers.
type Embedder interface {
	// EmbedText returns the vector of one document or query text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds several texts, returning vectors in input order.
	// Backends with a batch endpoint send one request.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
