package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/docvault/ai"
	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
)

// DefaultTopK is the number of hits returned when a query does not say.
const DefaultTopK = 5

// DefaultClass is the collection searched when none is configured.
const DefaultClass = "Document"

// filterOverfetch widens the neighbour fetch when hits may be filtered out.
const filterOverfetch = 4

// Query describes one search.
type Query struct {
	// Text is embedded and matched against the index.
	Text string

	// TopK caps the number of hits. Zero selects DefaultTopK.
	TopK int

	// ItemType, when set, drops hits of any other item type.
	ItemType string

	// PreferVerbatim ranks hits containing every significant query word first.
	PreferVerbatim bool
}

// Searcher provides semantic search over indexed documents.
type Searcher struct {
	index    storage.ObjectStore
	embedder ai.Embedder
	class    string
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithClass sets the collection to search.
func WithClass(class string) Option {
	return func(s *Searcher) error {
		if class == "" {
			return core.ErrMissingClass
		}
		s.class = class
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(index storage.ObjectStore, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		index:    index,
		embedder: embedder,
		class:    DefaultClass,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns the objects nearest to the query text, best first.
func (s *Searcher) Search(ctx context.Context, query Query) ([]*core.SearchHit, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor searches like Search, reporting each stage to monitor.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query Query, monitor SearchMonitor) ([]*core.SearchHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	query.Text = strings.TrimSpace(query.Text)
	if query.Text == "" {
		return nil, ErrEmptyQuery
	}
	if query.TopK <= 0 {
		query.TopK = DefaultTopK
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query.Text)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query.Text, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	limit := query.TopK
	if query.ItemType != "" || query.PreferVerbatim {
		limit *= filterOverfetch
	}
	hits, err := s.index.FindSimilar(ctx, s.class, embedding, limit)
	if err != nil {
		s.logger.Error("error querying for similar documents", "class", s.class, "err", err)
		return nil, err
	}
	monitor.AfterNearestNeighbours(hits)

	if query.ItemType != "" {
		hits = slices.DeleteFunc(hits, func(h *core.SearchHit) bool {
			if h.Object.Properties[core.PropItemType] == query.ItemType {
				return false
			}
			monitor.Filtered(h, "item_type")
			return true
		})
	}

	if query.PreferVerbatim {
		// Stable, so score order holds within each group.
		slices.SortStableFunc(hits, func(a, b *core.SearchHit) int {
			av := containsAllQueryWords(a.Object.Properties[core.PropText], query.Text)
			bv := containsAllQueryWords(b.Object.Properties[core.PropText], query.Text)
			switch {
			case av && !bv:
				return -1
			case bv && !av:
				return 1
			}
			return 0
		})
	}

	if len(hits) > query.TopK {
		hits = hits[:query.TopK]
	}
	monitor.Finish(hits)

	return hits, nil
}
