package handler

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
)

// Searcher shares one engine between HTTP requests. Queries run one at a
// time, each against the snapshot current when it started.
type Searcher struct {
	mu      sync.Mutex
	engine  *engine.Engine
	library *catalog.Library
}

func NewSearcher(library *catalog.Library, eng *engine.Engine) *Searcher {
	return &Searcher{engine: eng, library: library}
}

// Snapshot returns the snapshot new queries will run against.
func (s *Searcher) Snapshot() *catalog.Snapshot {
	return s.library.Current()
}

// Search runs query against snap.
func (s *Searcher) Search(snap *catalog.Snapshot, query string) engine.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Search(snap, query)
}
