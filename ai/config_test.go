package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Model)
	assert.Equal(t, DefaultDimension, cfg.Dimension)
	assert.Equal(t, 1024, cfg.CacheSize)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderOpenAI),
			WithHost("http://custom:8080"),
			WithModel("custom-embed"),
			WithDimension(64),
			WithCacheSize(0),
		)

		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "http://custom:8080", cfg.Host)
		assert.Equal(t, "custom-embed", cfg.Model)
		assert.Equal(t, 64, cfg.Dimension)
		assert.Zero(t, cfg.CacheSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		host     string
		wantHost string
		wantProv string
	}{
		{"openai adds v1", "openai", "http://localhost:11434", "http://localhost:11434/v1", ProviderOpenAI},
		{"openai keeps v1", "openai", "http://localhost:11434/v1", "http://localhost:11434/v1", ProviderOpenAI},
		{"openai trailing slash", "openai", "http://localhost:11434/", "http://localhost:11434/v1", ProviderOpenAI},
		{"ollama strips v1", "ollama", "http://localhost:11434/v1/", "http://localhost:11434", ProviderOllama},
		{"provider case", " Ollama ", "http://h:1", "http://h:1", ProviderOllama},
		{"hash untouched", "hash", "", "", ProviderHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: tt.provider, Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.wantHost, cfg.Host)
			assert.Equal(t, tt.wantProv, cfg.Provider)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		errMsg  string
	}{
		{name: "default ollama", cfg: *DefaultConfig()},
		{name: "hash needs no host", cfg: Config{Provider: ProviderHash, Dimension: 32}},
		{name: "missing host", cfg: Config{Provider: ProviderOllama, Model: "m"}, errMsg: "Host is required"},
		{name: "missing model", cfg: Config{Provider: ProviderOpenAI, Host: "http://h"}, errMsg: "Model is required"},
		{name: "bad dimension", cfg: Config{Provider: ProviderHash}, wantErr: ErrInvalidDimension},
		{name: "unknown provider", cfg: Config{Provider: "bert"}, wantErr: ErrUnknownProvider},
		{name: "negative cache", cfg: Config{Provider: ProviderHash, Dimension: 8, CacheSize: -1}, errMsg: "CacheSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
