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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/docvault"
	"github.com/poiesic/docvault/config"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/reindex"
	"github.com/poiesic/docvault/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docvault",
		Usage: "Archive documents, extract their text and keep a vector index in sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a dotenv file (defaults to .env when present)",
			},
			&cli.StringFlag{Name: "inbox", Usage: "Inbox directory"},
			&cli.StringFlag{Name: "archive", Usage: "Archive directory"},
			&cli.StringFlag{Name: "staging", Usage: "Staging queue directory"},
			&cli.StringFlag{Name: "active", Usage: "Live document tree to re-scan"},
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Poll interval in seconds or as a duration (5, 2.5, 1m)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Wake the poll loops early on filesystem events",
			},
			&cli.StringFlag{Name: "index", Usage: "Vector index backend (badger, weaviate)"},
			&cli.StringFlag{Name: "class", Usage: "Index class name"},
			&cli.StringFlag{Name: "data-dir", Usage: "BadgerDB directory for the embedded index"},
			&cli.StringFlag{Name: "weaviate-url", Usage: "Weaviate base URL"},
			&cli.StringFlag{Name: "embed-provider", Usage: "Embedding provider (ollama, openai, hash)"},
			&cli.StringFlag{Name: "embed-url", Usage: "Embedding service URL"},
			&cli.StringFlag{Name: "embed-model", Usage: "Embedding model name"},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "etl",
				Usage:  "Archive inbox files, extract their text and stage sidecars",
				Action: etlCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "once", Usage: "Scan the inbox once and exit"},
				},
			},
			{
				Name:   "sync",
				Usage:  "Ingest staged sidecars and re-scan the active tree",
				Action: syncCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "once", Usage: "Run a single sync pass and exit"},
				},
			},
			{
				Name:   "run",
				Usage:  "Run the etl and sync loops together",
				Action: runCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the index from the sidecars in the archive",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "archive",
						Usage: "Archive to replay (defaults to the configured archive)",
					},
					&cli.BoolFlag{
						Name:  "no-repair",
						Usage: "Do not re-extract archived files that have no sidecar",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers (defaults to the configured value)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N sidecars",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed sidecars",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the index",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of hits",
						Value:   search.DefaultTopK,
					},
					&cli.StringFlag{
						Name:  "item-type",
						Usage: "Only return hits of this item type",
					},
					&cli.BoolFlag{
						Name:  "verbatim",
						Usage: "Rank hits containing every query word first",
					},
					&cli.IntFlag{
						Name:  "snippet",
						Usage: "Snippet width in characters (0 disables)",
						Value: 160,
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "Create the index class or add its missing properties",
				Action: schemaCommand,
			},
		},
	}
}

func etlCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	v, err := openVault(c, docvault.OpenExtraction)
	if err != nil {
		return err
	}
	defer v.Close()

	if !c.Bool("once") {
		return v.RunETL(ctx)
	}
	scanner, err := v.NewScanner()
	if err != nil {
		return err
	}
	result, err := scanner.ScanOnce(ctx)
	if err != nil {
		return fmt.Errorf("inbox scan failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Processed %d files (%d failed)\n", result.Processed, result.Failed)
	return nil
}

func syncCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	v, err := openVault(c, docvault.Open)
	if err != nil {
		return err
	}
	defer v.Close()

	if !c.Bool("once") {
		return v.RunSync(ctx)
	}
	pass, err := v.NewSyncPass(ctx)
	if err != nil {
		return err
	}
	return pass.Run(ctx)
}

func runCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	v, err := openVault(c, docvault.Open)
	if err != nil {
		return err
	}
	defer v.Close()

	return v.Run(ctx)
}

func reindexCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	reindexConfig := reindex.DefaultConfig()
	reindexConfig.ReportInterval = c.Int("report-interval")
	reindexConfig.MaxRetries = c.Int("max-retries")
	reindexConfig.RetryDelay = c.Duration("retry-delay")
	reindexConfig.Repair = !c.Bool("no-repair")

	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if c.IsSet("workers") && c.Int("workers") <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}

	v, err := openVault(c, docvault.Open)
	if err != nil {
		return err
	}
	defer v.Close()

	reindexConfig.Workers = v.Config().Workers
	if c.IsSet("workers") {
		reindexConfig.Workers = c.Int("workers")
	}
	archiveDir := v.Config().ArchiveDir

	syncer, err := v.NewSyncer()
	if err != nil {
		return err
	}
	reindexer, err := v.NewReindexer(syncer,
		reindex.WithConfig(reindexConfig),
		reindex.WithProgress(c.App.ErrWriter),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Archive: %s\n", archiveDir)
	fmt.Fprintf(c.App.ErrWriter, "Index: %s (%s)\n", v.Config().Index.Backend, v.Config().Index.Class)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", v.Config().Embed.Model)
	fmt.Fprintln(c.App.ErrWriter)

	result, err := reindexer.Run(ctx, archiveDir)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Loaded %d sidecars (%d skipped, %d failed, %d repaired)\n",
		result.Loaded, result.Skipped, result.Failed, result.Repaired)
	if result.Failed > 0 {
		return fmt.Errorf("%d sidecars failed to load: %w", result.Failed, result.Errors)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("a query is required")
	}
	if c.Int("top-k") <= 0 {
		return fmt.Errorf("top-k must be greater than 0")
	}

	v, err := openVault(c, docvault.Open)
	if err != nil {
		return err
	}
	defer v.Close()

	searcher, err := v.NewSearcher()
	if err != nil {
		return err
	}
	query := search.Query{
		Text:           text,
		TopK:           c.Int("top-k"),
		ItemType:       c.String("item-type"),
		PreferVerbatim: c.Bool("verbatim"),
	}
	hits, err := searcher.SearchWithMonitor(c.Context, query, search.NewLogMonitor(slog.Default()))
	if err != nil {
		return err
	}
	printHits(c.App.Writer, hits, text, c.Int("snippet"))
	return nil
}

func schemaCommand(c *cli.Context) error {
	v, err := openVault(c, docvault.Open)
	if err != nil {
		return err
	}
	defer v.Close()

	syncer, err := v.NewSyncer()
	if err != nil {
		return err
	}
	added, err := syncer.EnsureSchema(c.Context)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		fmt.Fprintf(c.App.Writer, "Class %s is up to date\n", syncer.Class())
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Class %s: added %s\n", syncer.Class(), strings.Join(added, ", "))
	return nil
}

func printHits(w io.Writer, hits []*core.SearchHit, query string, snippetWidth int) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, hit := range hits {
		props := hit.Object.Properties
		fmt.Fprintf(w, "%d. score=%.4f distance=%.4f item_type=%s\n",
			i+1, hit.Score, hit.Distance, props[core.PropItemType])
		fmt.Fprintf(w, "   source: %s\n", props[core.PropSourcePath])
		if archived := props[core.PropArchivedPath]; archived != "" {
			fmt.Fprintf(w, "   archived: %s\n", archived)
		}
		if snippetWidth > 0 {
			if snippet := search.Snippet(props[core.PropText], query, snippetWidth); snippet != "" {
				fmt.Fprintf(w, "   %s\n", snippet)
			}
		}
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

type openFunc func(cfg *config.Config, opts ...docvault.Option) (*docvault.Vault, error)

func openVault(c *cli.Context, open openFunc) (*docvault.Vault, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if !c.IsSet("log-level") && cfg.LogLevel != "" {
		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		slog.SetDefault(logger)
	}
	v, err := open(cfg, docvault.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return v, nil
}

// loadConfig layers the command line over the file and environment settings.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.String("config"),
		EnvFile:    c.String("env-file"),
	})
	if err != nil {
		return nil, err
	}

	strs := []struct {
		flag string
		dst  *string
	}{
		{"inbox", &cfg.InboxDir},
		{"archive", &cfg.ArchiveDir},
		{"staging", &cfg.StagingDir},
		{"active", &cfg.ActiveDir},
		{"index", &cfg.Index.Backend},
		{"class", &cfg.Index.Class},
		{"data-dir", &cfg.Index.DataDir},
		{"weaviate-url", &cfg.Index.WeaviateURL},
		{"embed-provider", &cfg.Embed.Provider},
		{"embed-url", &cfg.Embed.URL},
		{"embed-model", &cfg.Embed.Model},
	}
	for _, s := range strs {
		if v, ok := lookupString(c, s.flag); ok {
			*s.dst = v
		}
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = strings.ToLower(c.String("log-level"))
	}
	if c.IsSet("watch") {
		cfg.Watch = c.Bool("watch")
	}
	if c.IsSet("interval") {
		d, err := config.ParseInterval(c.String("interval"))
		if err != nil {
			return nil, err
		}
		cfg.PollInterval = config.Interval(d)
	}
	return cfg, nil
}

// lookupString returns the innermost explicitly set value of a string flag.
// A command flag may shadow a global one of the same name.
func lookupString(c *cli.Context, name string) (string, bool) {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx.String(name), true
		}
	}
	return "", false
}

func newLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}

func setupLogger(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
