// Package ollama provides an ai.Embedder backed by an Ollama server.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/docvault/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultTimeout bounds a single embedding request.
const DefaultTimeout = 60 * time.Second

// Embedder implements ai.Embedder using langchaingo's Ollama client.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an Embedder.
type Option func(*options)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEmbedder creates an Ollama embedder from config.
func NewEmbedder(config *ai.Config, opts ...Option) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderOllama {
		return nil, fmt.Errorf("%w: ollama embedder cannot serve %q", ai.ErrUnknownProvider, config.Provider)
	}

	o := &options{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.Host),
		ollama.WithModel(config.Model),
		ollama.WithHTTPClient(o.httpClient),
	)
	if err != nil {
		return nil, err
	}

	// Document text is embedded as extracted.
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, err
	}
	return newEmbedder(embedder, o.logger), nil
}

func newEmbedder(embedder embeddings.Embedder, logger *slog.Logger) *Embedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{
		embedder: embedder,
		logger:   logger.With("component", "ollama-embedder"),
	}
}

// EmbedText generates a vector embedding for the given text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}
	e.logger.Debug("embedded text", "length", len(text), "dimension", len(vectors[0]))
	return vectors[0], nil
}

// EmbedTexts embeds texts in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ai.ErrEmptyEmbedding, len(vectors), len(texts))
	}
	return vectors, nil
}
