package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// Snapshot is an immutable view of the collections. Slices returned by its
// accessors are shared and must not be modified.
type Snapshot struct {
	categories     []Category
	definitions    []Definition
	content        ContentMap
	categoryByID   map[string]int
	definitionByID map[string]int
	fingerprint    string
}

// NewSnapshot copies the given collections and computes their fingerprint.
// When an id appears more than once the first record wins lookups.
func NewSnapshot(categories []Category, definitions []Definition, content ContentMap) *Snapshot {
	s := &Snapshot{
		categories:     slices.Clone(categories),
		definitions:    slices.Clone(definitions),
		content:        make(ContentMap, len(content)),
		categoryByID:   make(map[string]int, len(categories)),
		definitionByID: make(map[string]int, len(definitions)),
	}
	for id, entry := range content {
		s.content[id] = entry
	}
	for i, c := range s.categories {
		if _, dup := s.categoryByID[c.CategoryID]; !dup {
			s.categoryByID[c.CategoryID] = i
		}
	}
	for i, d := range s.definitions {
		if _, dup := s.definitionByID[d.DefinitionID]; !dup {
			s.definitionByID[d.DefinitionID] = i
		}
	}
	s.fingerprint = s.computeFingerprint()
	return s
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	return NewSnapshot(nil, nil, nil)
}

func (s *Snapshot) Categories() []Category {
	return s.categories
}

func (s *Snapshot) Definitions() []Definition {
	return s.definitions
}

func (s *Snapshot) Category(id string) (Category, bool) {
	i, ok := s.categoryByID[id]
	if !ok {
		return Category{}, false
	}
	return s.categories[i], true
}

func (s *Snapshot) Definition(id string) (Definition, bool) {
	i, ok := s.definitionByID[id]
	if !ok {
		return Definition{}, false
	}
	return s.definitions[i], true
}

func (s *Snapshot) Content(definitionID string) (ContentEntry, bool) {
	entry, ok := s.content[definitionID]
	return entry, ok
}

// CategoryLabel returns the display label of the category, or "" when the id
// does not resolve.
func (s *Snapshot) CategoryLabel(categoryID string) string {
	c, ok := s.Category(categoryID)
	if !ok {
		return ""
	}
	return c.Label()
}

// DefinitionsIn returns the definitions filed under categoryID in document
// order.
func (s *Snapshot) DefinitionsIn(categoryID string) []Definition {
	var defs []Definition
	for _, d := range s.definitions {
		if d.CategoryID == categoryID {
			defs = append(defs, d)
		}
	}
	return defs
}

// FirstDefinitionIn returns the first definition filed under categoryID.
func (s *Snapshot) FirstDefinitionIn(categoryID string) (Definition, bool) {
	for _, d := range s.definitions {
		if d.CategoryID == categoryID {
			return d, true
		}
	}
	return Definition{}, false
}

// Tree groups definitions under their categories. Definitions whose category
// is unknown are not part of the tree.
func (s *Snapshot) Tree() []TreeNode {
	nodes := make([]TreeNode, 0, len(s.categories))
	for _, c := range s.categories {
		defs := s.DefinitionsIn(c.CategoryID)
		if defs == nil {
			defs = []Definition{}
		}
		nodes = append(nodes, TreeNode{Category: c, Definitions: defs})
	}
	return nodes
}

// Fingerprint identifies the snapshot contents. Two snapshots built from equal
// collections have equal fingerprints.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

func (s *Snapshot) Len() (categories, definitions, content int) {
	return len(s.categories), len(s.definitions), len(s.content)
}

// computeFingerprint hashes every field of every record with NUL separators.
// Content entries are written in definition order, followed by any entries
// without a definition in sorted key order.
func (s *Snapshot) computeFingerprint() string {
	h := sha256.New()
	write := func(fields ...string) {
		for _, f := range fields {
			h.Write([]byte(f))
			h.Write([]byte{0})
		}
	}

	write("categories")
	for _, c := range s.categories {
		write(c.CategoryID, c.CategoryName, c.DisplayName)
	}
	write("definitions")
	for _, d := range s.definitions {
		write(d.DefinitionID, d.DefinitionName, d.CategoryID, d.DefinitionType)
	}

	write("content")
	written := make(map[string]struct{}, len(s.content))
	for _, d := range s.definitions {
		if _, done := written[d.DefinitionID]; done {
			continue
		}
		if entry, ok := s.content[d.DefinitionID]; ok {
			write(d.DefinitionID, entry.Code, entry.Language, entry.Type)
			written[d.DefinitionID] = struct{}{}
		}
	}
	orphans := make([]string, 0)
	for id := range s.content {
		if _, done := written[id]; !done {
			orphans = append(orphans, id)
		}
	}
	slices.Sort(orphans)
	for _, id := range orphans {
		entry := s.content[id]
		write(id, entry.Code, entry.Language, entry.Type)
	}

	return hex.EncodeToString(h.Sum(nil))
}
