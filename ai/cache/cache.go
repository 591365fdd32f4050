// Package cache wraps an ai.Embedder with an in-memory LRU of recent vectors.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/ai/hashvec"
)

// Embedder caches vectors by the BLAKE2b digest of their text.
type Embedder struct {
	inner ai.Embedder
	cache *lru.Cache[[32]byte, []float32]
}

var _ ai.Embedder = (*Embedder)(nil)

// New wraps inner with a cache holding up to size vectors.
func New(inner ai.Embedder, size int) (*Embedder, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner embedder cannot be nil")
	}
	cache, err := lru.New[[32]byte, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// EmbedText returns a cached vector or computes and stores a new one.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := digestKey(text)
	if vec, ok := e.cache.Get(key); ok {
		return clone(vec), nil
	}
	vec, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, clone(vec))
	return vec, nil
}

// EmbedTexts serves cached texts locally and sends the rest to the inner embedder in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(digestKey(text)); ok {
			vectors[i] = clone(vec)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	computed, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missing) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ai.ErrEmptyEmbedding, len(computed), len(missing))
	}
	for j, vec := range computed {
		vectors[missingIdx[j]] = vec
		e.cache.Add(digestKey(missing[j]), clone(vec))
	}
	return vectors, nil
}

// Len returns the number of cached vectors.
func (e *Embedder) Len() int {
	return e.cache.Len()
}

func digestKey(text string) [32]byte {
	var key [32]byte
	copy(key[:], hashvec.Digest(text))
	return key
}

func clone(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
