// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package hashvec derives embedding vectors deterministically from text.
//
// The text's BLAKE2b-256 digest is expanded into a byte stream by hashing the
// digest with an incrementing counter, and every byte is scaled into [0, 1].
// Identical text always yields identical vectors, but the vectors carry no
// semantic meaning.
package hashvec

import (
	"context"
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docvault/ai"
)

// blockSize is the number of vector components produced per expansion round.
const blockSize = 64

// Embedder is an ai.Embedder that needs no external service.
type Embedder struct {
	dimension int
}

var _ ai.Embedder = (*Embedder)(nil)

// New creates a generator producing vectors of length dimension.
// Non-positive dimensions fall back to ai.DefaultDimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = ai.DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Dimension returns the vector length.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// EmbedText returns the hash-expanded vector of text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Vector(text, e.dimension), nil
}

// EmbedTexts returns one vector per text.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = Vector(text, e.dimension)
	}
	return vectors, nil
}

// Vector computes the deterministic vector of text with the given length.
func Vector(text string, dimension int) []float32 {
	digest := Digest(text)

	vector := make([]float32, 0, dimension)
	var counter [4]byte
	for round := uint32(0); len(vector) < dimension; round++ {
		binary.LittleEndian.PutUint32(counter[:], round)
		h, _ := blake2b.New(blockSize, nil)
		h.Write(digest)
		h.Write(counter[:])
		for _, b := range h.Sum(nil) {
			if len(vector) == dimension {
				break
			}
			vector = append(vector, float32(b)/255.0)
		}
	}
	return vector
}

// Digest returns the BLAKE2b-256 digest of text.
func Digest(text string) []byte {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(text))
	return h.Sum(nil)
}
