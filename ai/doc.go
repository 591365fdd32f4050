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


// Package ai provides the vector generator abstraction used by the sync stage.
//
// The Embedder interface turns extracted document text into a fixed-length
// vector. Implementations live in sub-packages:
//
//   - ai/ollama: an Ollama server through langchaingo
//   - ai/openai: OpenAI-compatible APIs through langchaingo
//   - ai/hashvec: deterministic hash expansion, no service required
//   - ai/cache: LRU wrapper around any Embedder
//   - ai/mock: test double with injectable behaviour
//
// Vectors from different providers are not comparable. An index must be fully
// rebuilt after switching providers.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderHash), ai.WithDimension(256))
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	embedder := hashvec.New(cfg.Dimension)
//	vec, err := embedder.EmbedText(ctx, "Hello world")
package ai
