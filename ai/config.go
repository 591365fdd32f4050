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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Supported embedding providers.
const (
	// ProviderOllama calls an Ollama server through langchaingo.
	ProviderOllama = "ollama"
	// ProviderOpenAI calls an OpenAI-compatible /v1/embeddings endpoint.
	ProviderOpenAI = "openai"
	// ProviderHash derives vectors locally by hash expansion. No service is contacted.
	ProviderHash = "hash"
)

// DefaultDimension is the vector length used by the hash provider when none is set.
const DefaultDimension = 768

// Config holds configuration for the embedding service.
type Config struct {
	// Provider selects the embedding implementation: ollama, openai or hash.
	Provider string

	// Host is the base URL of the embedding service.
	// Example: "http://localhost:11434" for Ollama.
	// Ignored by the hash provider.
	Host string

	// Model is the embedding model identifier.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	Model string

	// Dimension is the vector length produced by the hash provider.
	Dimension int

	// CacheSize bounds the number of cached embeddings. Zero disables caching.
	CacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding provider.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithDimension sets the hash provider's vector length.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithCacheSize sets the embedding cache capacity.
func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// DefaultConfig returns a Config for a local Ollama instance.
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderOllama,
		Host:      "http://localhost:11434",
		Model:     "nomic-embed-text",
		Dimension: DefaultDimension,
		CacheSize: 1024,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithHost("http://localhost:11434/v1"),
//	    WithModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix; Ollama hosts lose one, since the
// native API lives at the server root.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Host = strings.TrimSuffix(strings.TrimSpace(c.Host), "/")
	switch c.Provider {
	case ProviderOpenAI:
		if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
			c.Host = c.Host + "/v1"
		}
	case ProviderOllama:
		c.Host = strings.TrimSuffix(c.Host, "/v1")
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOllama, ProviderOpenAI:
		if c.Host == "" {
			return errors.New("ai config: Host is required")
		}
		if c.Model == "" {
			return errors.New("ai config: Model is required")
		}
	case ProviderHash:
		if c.Dimension <= 0 {
			return fmt.Errorf("ai config: %w", ErrInvalidDimension)
		}
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProvider, c.Provider)
	}
	if c.CacheSize < 0 {
		return errors.New("ai config: CacheSize cannot be negative")
	}
	return nil
}
