// Package engine runs a raw query against the category, definition and
// content indexes of a snapshot and merges the hits into one ordered list.
package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
)

// Recorder observes executed queries.
type Recorder interface {
	QueryExecuted(status string, counts map[string]int, took time.Duration)
}

type Option func(*Engine)

// WithBuilder supplies the index builder. Engines that share a builder share
// its index sets.
func WithBuilder(b *indexer.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine belongs to one session. It is not safe for concurrent use.
type Engine struct {
	cfg      config.SearchConfig
	builder  *indexer.Builder
	recorder Recorder
	logger   *slog.Logger
}

func New(cfg config.SearchConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg.WithDefaults(),
		logger: slog.Default().With("component", "query-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.builder == nil {
		e.builder = indexer.NewBuilder(indexer.WithLogger(e.logger))
	}
	return e
}

// Config returns the effective caps.
func (e *Engine) Config() config.SearchConfig {
	return e.cfg
}

// Search builds (or reuses) the indexes for snap and runs rawQuery against
// them. Categories come first, then definition names, then content matches.
func (e *Engine) Search(snap *catalog.Snapshot, rawQuery string) Response {
	start := time.Now()
	if snap == nil {
		snap = catalog.Empty()
	}

	var resp Response
	if strings.TrimSpace(rawQuery) == "" {
		resp = Response{Query: rawQuery, Status: StatusPrompt, Results: []Result{}}
	} else {
		set := e.builder.Build(snap)
		resp = Query(e.cfg, set, snap, rawQuery)
	}

	took := time.Since(start)
	if e.recorder != nil {
		e.recorder.QueryExecuted(string(resp.Status), resp.Counts(), took)
	}
	e.logger.Debug("query executed",
		"query", rawQuery,
		"status", resp.Status,
		"results", len(resp.Results),
		"took", took,
	)
	return resp
}

// Query runs rawQuery against a prebuilt index set. set must have been built
// from snap.
func Query(cfg config.SearchConfig, set *indexer.IndexSet, snap *catalog.Snapshot, rawQuery string) Response {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(rawQuery) == "" {
		return Response{Query: rawQuery, Status: StatusPrompt, Results: []Result{}}
	}

	results := make([]Result, 0, cfg.MaxResults())
	seen := make(map[string]struct{}, cfg.MaxResults())

	for _, id := range set.Categories.Search(rawQuery, cfg.CategoryLimit) {
		c, ok := snap.Category(id)
		if !ok {
			continue
		}
		results = append(results, Result{
			Kind:        KindCategory,
			ID:          c.CategoryID,
			Name:        c.CategoryName,
			DisplayName: c.DisplayName,
			MatchKind:   MatchName,
		})
		seen[id] = struct{}{}
	}

	for _, id := range set.Definitions.Search(rawQuery, cfg.DefinitionLimit) {
		if _, dup := seen[id]; dup {
			continue
		}
		d, ok := snap.Definition(id)
		if !ok {
			continue
		}
		results = append(results, Result{
			Kind:       KindDefinition,
			ID:         d.DefinitionID,
			Name:       d.DefinitionName,
			CategoryID: d.CategoryID,
			MatchKind:  MatchName,
		})
		seen[id] = struct{}{}
	}

	needle := strings.ToLower(rawQuery)
	for _, id := range set.Content.Search(rawQuery, cfg.ContentLimit) {
		if _, dup := seen[id]; dup {
			continue
		}
		d, ok := snap.Definition(id)
		if !ok {
			continue
		}
		entry, ok := snap.Content(id)
		if !ok || !strings.Contains(strings.ToLower(entry.Code), needle) {
			continue
		}
		results = append(results, Result{
			Kind:       KindContent,
			ID:         d.DefinitionID,
			Name:       d.DefinitionName,
			CategoryID: d.CategoryID,
			MatchKind:  MatchContent,
			Snippet:    Snippet(entry.Code, rawQuery, cfg.SnippetMaxLen),
		})
		seen[id] = struct{}{}
	}

	status := StatusMatches
	if len(results) == 0 {
		status = StatusNoMatches
	}
	return Response{Query: rawQuery, Status: status, Results: results}
}
