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


package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/etl"
)

// Index backends.
const (
	// IndexBadger keeps the vector index in an embedded BadgerDB directory.
	IndexBadger = "badger"
	// IndexWeaviate talks to an external Weaviate server.
	IndexWeaviate = "weaviate"
)

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Interval is a poll period. In text form it accepts Go durations ("1m30s")
// and bare seconds ("5", "0.5").
type Interval time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interval) UnmarshalText(text []byte) error {
	d, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*i = Interval(d)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i Interval) MarshalText() ([]byte, error) {
	return []byte(time.Duration(i).String()), nil
}

// Duration returns the interval as a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

// ParseInterval parses a Go duration or a number of seconds.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return d, nil
}

// IndexConfig selects and addresses the vector index.
type IndexConfig struct {
	Backend     string `toml:"backend"`
	Class       string `toml:"class"`
	DataDir     string `toml:"data_dir"`
	WeaviateURL string `toml:"weaviate_url"`
}

// EmbedConfig selects the vector generator.
type EmbedConfig struct {
	Provider  string `toml:"provider"`
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension"`
	CacheSize int    `toml:"cache_size"`
}

// Config is the complete startup configuration.
type Config struct {
	InboxDir         string      `toml:"inbox_dir"`
	ArchiveDir       string      `toml:"archive_dir"`
	StagingDir       string      `toml:"staging_dir"`
	ActiveDir        string      `toml:"active_dir"`
	ActiveExtensions []string    `toml:"active_extensions"`
	PollInterval     Interval    `toml:"poll_interval"`
	Watch            bool        `toml:"watch"`
	Workers          int         `toml:"workers"`
	LogLevel         string      `toml:"log_level"`
	Index            IndexConfig `toml:"index"`
	Embed            EmbedConfig `toml:"embed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	embed := ai.DefaultConfig()
	return &Config{
		InboxDir:         "inbox",
		ArchiveDir:       "archive",
		StagingDir:       "staging",
		ActiveDir:        "",
		ActiveExtensions: []string{".md", ".txt"},
		PollInterval:     Interval(5 * time.Second),
		Workers:          4,
		LogLevel:         "info",
		Index: IndexConfig{
			Backend:     IndexBadger,
			Class:       "Document",
			DataDir:     "docvault-data",
			WeaviateURL: "http://localhost:8080",
		},
		Embed: EmbedConfig{
			Provider:  embed.Provider,
			URL:       embed.Host,
			Model:     embed.Model,
			Dimension: embed.Dimension,
			CacheSize: embed.CacheSize,
		},
	}
}

// LoadOptions names the sources Load reads.
type LoadOptions struct {
	// ConfigFile is a TOML file. Empty skips the layer; a named file must exist.
	ConfigFile string

	// EnvFile is a dotenv file. Empty selects DefaultEnvFile, which may be absent.
	EnvFile string

	// Lookup reads the environment. Nil selects os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Load builds a Config from defaults, the TOML file, the dotenv file and the
// environment. Variables already set in the environment win over the dotenv
// file. The result is not validated.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.loadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || opts.EnvFile != "" {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		dotenv = nil
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	layered := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(layered); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. Where a setting has both an
// unprefixed and a DOCVAULT_ name, the DOCVAULT_ one wins.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
			}
		}
	}
	num := func(dst *int, key string) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		*dst = n
		return nil
	}

	str(&c.InboxDir, "INBOX_DIR", "DOCVAULT_INBOX_DIR")
	str(&c.ArchiveDir, "ARCHIVE_DIR", "DOCVAULT_ARCHIVE_DIR")
	str(&c.StagingDir, "STAGING_DIR", "DOCVAULT_STAGING_DIR")
	str(&c.ActiveDir, "ACTIVE_DIR", "DOCVAULT_ACTIVE_DIR")
	str(&c.LogLevel, "DOCVAULT_LOG_LEVEL")
	str(&c.Index.Backend, "DOCVAULT_INDEX")
	str(&c.Index.Class, "WEAVIATE_CLASS", "DOCVAULT_CLASS")
	str(&c.Index.DataDir, "DOCVAULT_DATA_DIR")
	str(&c.Index.WeaviateURL, "WEAVIATE_URL")
	str(&c.Embed.Provider, "DOCVAULT_EMBED_PROVIDER")
	str(&c.Embed.URL, "OLLAMA_URL", "DOCVAULT_EMBED_URL")
	str(&c.Embed.Model, "EMBED_MODEL")

	if v, ok := lookup("POLL_INTERVAL"); ok && v != "" {
		d, err := ParseInterval(v)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL: %w", err)
		}
		c.PollInterval = Interval(d)
	}
	if v, ok := lookup("DOCVAULT_WATCH"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: DOCVAULT_WATCH: %w", ErrInvalidConfig, err)
		}
		c.Watch = b
	}
	if v, ok := lookup("DOCVAULT_ACTIVE_EXTENSIONS"); ok && v != "" {
		c.ActiveExtensions = SplitList(v)
	}
	for key, dst := range map[string]*int{
		"DOCVAULT_WORKERS":         &c.Workers,
		"DOCVAULT_EMBED_DIMENSION": &c.Embed.Dimension,
		"DOCVAULT_EMBED_CACHE":     &c.Embed.CacheSize,
	} {
		if err := num(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateExtraction normalises and checks the settings the extraction stage
// reads. Index and vector generator settings are not examined.
func (c *Config) ValidateExtraction() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if err := c.Dirs().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Validate normalises the configuration and checks it for consistency.
func (c *Config) Validate() error {
	if err := c.ValidateExtraction(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.ActiveDir != "" {
		for _, other := range []string{c.InboxDir, c.ArchiveDir, c.StagingDir} {
			if etl.Overlap(other, c.ActiveDir) {
				return fmt.Errorf("%w: %w: active %s and %s", ErrInvalidConfig, etl.ErrOverlappingDirs, c.ActiveDir, other)
			}
		}
	}

	c.Index.Backend = strings.ToLower(strings.TrimSpace(c.Index.Backend))
	switch c.Index.Backend {
	case IndexBadger:
		if c.Index.DataDir == "" {
			return fmt.Errorf("%w: badger backend needs a data directory", ErrInvalidConfig)
		}
	case IndexWeaviate:
		if c.Index.WeaviateURL == "" {
			return fmt.Errorf("%w: weaviate backend needs a URL", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfig, c.Index.Backend)
	}
	if c.Index.Class == "" {
		return fmt.Errorf("%w: collection class is required", ErrInvalidConfig)
	}

	if err := c.Embedder().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Dirs returns the directory roots of the extraction stage.
func (c *Config) Dirs() etl.Dirs {
	return etl.Dirs{Inbox: c.InboxDir, Archive: c.ArchiveDir, Staging: c.StagingDir}
}

// Embedder returns the vector generator configuration.
func (c *Config) Embedder() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.Embed.Provider),
		ai.WithHost(c.Embed.URL),
		ai.WithModel(c.Embed.Model),
		ai.WithDimension(c.Embed.Dimension),
		ai.WithCacheSize(c.Embed.CacheSize),
	)
}
