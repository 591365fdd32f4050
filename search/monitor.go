package search

import (
	"log/slog"

	"github.com/poiesic/docvault/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query Query)
	AfterEmbedding(dimension int)
	AfterNearestNeighbours(hits []*core.SearchHit)
	Filtered(hit *core.SearchHit, reason string)
	Finish(hits []*core.SearchHit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query)                              {}
func (n *noopMonitor) AfterEmbedding(_ int)                       {}
func (n *noopMonitor) AfterNearestNeighbours(_ []*core.SearchHit) {}
func (n *noopMonitor) Filtered(_ *core.SearchHit, _ string)       {}
func (n *noopMonitor) Finish(_ []*core.SearchHit)                 {}

// LogMonitor reports every search stage at debug level.
type LogMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

// NewLogMonitor creates a monitor writing to logger, or slog.Default() if nil.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger.With("component", "search")}
}

func (m *LogMonitor) Start(query Query) {
	m.logger.Debug("search started", "query", query.Text, "top_k", query.TopK, "item_type", query.ItemType)
}

func (m *LogMonitor) AfterEmbedding(dimension int) {
	m.logger.Debug("query embedded", "dimension", dimension)
}

func (m *LogMonitor) AfterNearestNeighbours(hits []*core.SearchHit) {
	m.logger.Debug("nearest neighbours fetched", "hits", len(hits))
}

func (m *LogMonitor) Filtered(hit *core.SearchHit, reason string) {
	m.logger.Debug("hit filtered", "id", hit.Object.ID, "reason", reason)
}

func (m *LogMonitor) Finish(hits []*core.SearchHit) {
	m.logger.Debug("search finished", "hits", len(hits))
}
