// Package indexer builds the search indexes for a catalog snapshot. The three
// indexes are always derived wholesale from one snapshot and are never edited
// afterwards; a Builder keeps the last set and hands it back while the
// snapshot fingerprint stays the same.
package indexer

import (
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer/index"
)

// Index names used in logs and metrics.
const (
	CategoryIndex   = "category"
	DefinitionIndex = "definition"
	ContentIndex    = "content"
)

// IndexSet is the category, definition-name and content indexes built from
// one snapshot.
type IndexSet struct {
	Fingerprint string
	Categories  *index.MemoryIndex
	Definitions *index.MemoryIndex
	Content     *index.MemoryIndex
}

// DocCounts reports the number of documents in each index.
func (s *IndexSet) DocCounts() map[string]int {
	return map[string]int{
		CategoryIndex:   s.Categories.DocCount(),
		DefinitionIndex: s.Definitions.DocCount(),
		ContentIndex:    s.Content.DocCount(),
	}
}

// TermCounts reports the number of distinct terms in each index.
func (s *IndexSet) TermCounts() map[string]int {
	return map[string]int{
		CategoryIndex:   s.Categories.Terms(),
		DefinitionIndex: s.Definitions.Terms(),
		ContentIndex:    s.Content.Terms(),
	}
}

// Recorder observes builder activity.
type Recorder interface {
	IndexReused()
	IndexRebuilt(docs map[string]int, took time.Duration)
}

type Option func(*Builder)

func WithRecorder(r Recorder) Option {
	return func(b *Builder) {
		b.recorder = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder memoizes the index set of the most recent snapshot. It is owned by
// a single session and is not safe for concurrent use.
type Builder struct {
	last     *IndexSet
	recorder Recorder
	logger   *slog.Logger
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: slog.Default().With("component", "index-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the index set for snap, rebuilding only when the snapshot
// fingerprint differs from the one last built.
func (b *Builder) Build(snap *catalog.Snapshot) *IndexSet {
	fp := snap.Fingerprint()
	if b.last != nil && b.last.Fingerprint == fp {
		if b.recorder != nil {
			b.recorder.IndexReused()
		}
		return b.last
	}

	start := time.Now()
	set := BuildIndexes(snap)
	took := time.Since(start)
	b.last = set

	counts := set.DocCounts()
	if b.recorder != nil {
		b.recorder.IndexRebuilt(counts, took)
	}
	terms := set.TermCounts()
	b.logger.Debug("indexes rebuilt",
		"fingerprint", fp[:12],
		"categories", counts[CategoryIndex],
		"definitions", counts[DefinitionIndex],
		"content", counts[ContentIndex],
		"category_terms", terms[CategoryIndex],
		"definition_terms", terms[DefinitionIndex],
		"content_terms", terms[ContentIndex],
		"took", took,
	)
	return set
}

// BuildIndexes derives a fresh index set from snap without memoization.
func BuildIndexes(snap *catalog.Snapshot) *IndexSet {
	set := &IndexSet{
		Fingerprint: snap.Fingerprint(),
		Categories:  index.NewMemoryIndex(),
		Definitions: index.NewMemoryIndex(),
		Content:     index.NewMemoryIndex(),
	}
	for _, c := range snap.Categories() {
		set.Categories.Add(c.CategoryID, CategoryText(c))
	}
	for _, d := range snap.Definitions() {
		set.Definitions.Add(d.DefinitionID, DefinitionText(d))
	}
	for _, d := range snap.Definitions() {
		entry, ok := snap.Content(d.DefinitionID)
		if !ok || entry.Code == "" {
			continue
		}
		set.Content.Add(d.DefinitionID, ContentText(d, entry.Code))
	}
	return set
}

func CategoryText(c catalog.Category) string {
	return c.CategoryName + " " + c.DisplayName
}

func DefinitionText(d catalog.Definition) string {
	return d.DefinitionID + " " + d.DefinitionName
}

func ContentText(d catalog.Definition, code string) string {
	return d.DefinitionID + " " + d.DefinitionName + " " + code
}
