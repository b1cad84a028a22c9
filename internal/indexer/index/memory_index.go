// Package index implements the in-memory inverted index behind each search
// field. Documents are added once while an index is being built; after that
// the index is only read. Callers that need different contents build a new
// index rather than editing an existing one.
package index

import (
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer/tokenizer"
)

type MemoryIndex struct {
	mu      sync.RWMutex
	index   map[string]map[string]*Posting
	docs    map[string]*docInfo
	nextSeq int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index: make(map[string]map[string]*Posting),
		docs:  make(map[string]*docInfo),
	}
}

// Add tokenizes text and records it under docID. Adding an id that is already
// present replaces its postings but keeps its original insertion order.
func (m *MemoryIndex) Add(docID string, text string) {
	tokens := tokenizer.Tokenize(text)

	termData := make(map[string]*Posting)
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		p, exists := termData[token.Term]
		if !exists {
			p = &Posting{DocID: docID}
			termData[token.Term] = p
			terms = append(terms, token.Term)
		}
		p.Frequency++
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seq := m.nextSeq
	if prev, exists := m.docs[docID]; exists {
		seq = prev.seq
		m.dropPostings(docID, prev.terms)
	} else {
		m.nextSeq++
	}
	m.docs[docID] = &docInfo{seq: seq, length: len(tokens), terms: terms}

	for term, posting := range termData {
		if _, exists := m.index[term]; !exists {
			m.index[term] = make(map[string]*Posting)
		}
		m.index[term][docID] = posting
	}
}

func (m *MemoryIndex) dropPostings(docID string, terms []string) {
	for _, term := range terms {
		docs := m.index[term]
		delete(docs, docID)
		if len(docs) == 0 {
			delete(m.index, term)
		}
	}
}

// Search returns the ids of documents sharing at least one token with query.
// Documents matching more distinct query terms come first, then those whose
// tokens are more densely made of matches, then earlier insertions. A limit
// of zero or less returns every match. A query without tokens matches nothing.
func (m *MemoryIndex) Search(query string, limit int) []string {
	terms := tokenizer.Terms(query)
	if len(terms) == 0 {
		return []string{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := make(map[string]*hit)
	occurrences := make(map[string]int)
	for _, term := range terms {
		for docID, posting := range m.index[term] {
			h, exists := hits[docID]
			if !exists {
				h = &hit{docID: docID, seq: m.docs[docID].seq}
				hits[docID] = h
			}
			h.matched++
			occurrences[docID] += posting.Frequency
		}
	}

	ranked := make([]*hit, 0, len(hits))
	for docID, h := range hits {
		if length := m.docs[docID].length; length > 0 {
			h.density = float64(occurrences[docID]) / float64(length)
		}
		ranked = append(ranked, h)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].matched != ranked[j].matched {
			return ranked[i].matched > ranked[j].matched
		}
		if ranked[i].density != ranked[j].density {
			return ranked[i].density > ranked[j].density
		}
		return ranked[i].seq < ranked[j].seq
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]string, len(ranked))
	for i, h := range ranked {
		ids[i] = h.docID
	}
	return ids
}

func (m *MemoryIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Terms reports the number of distinct terms in the index.
func (m *MemoryIndex) Terms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}
