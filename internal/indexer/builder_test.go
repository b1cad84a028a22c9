package indexer

import (
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	reused  int
	rebuilt int
	docs    map[string]int
}

func (r *recorder) IndexReused() { r.reused++ }

func (r *recorder) IndexRebuilt(docs map[string]int, _ time.Duration) {
	r.rebuilt++
	r.docs = docs
}

func snapshot(code string) *catalog.Snapshot {
	return catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Orders", DisplayName: "Sales"}},
		[]catalog.Definition{
			{DefinitionID: "DEF1", DefinitionName: "GetOrders", CategoryID: "c1"},
			{DefinitionID: "DEF2", DefinitionName: "Query", CategoryID: "c1"},
			{DefinitionID: "DEF3", DefinitionName: "Blank", CategoryID: "c1"},
		},
		catalog.ContentMap{
			"DEF2": {Code: code, Language: "sql", Type: "sql"},
			"DEF3": {Code: "", Language: "sql", Type: "sql"},
		},
	)
}

func TestBuildIndexes(t *testing.T) {
	set := BuildIndexes(snapshot("SELECT id FROM orders"))

	assert.Equal(t, map[string]int{CategoryIndex: 1, DefinitionIndex: 3, ContentIndex: 1}, set.DocCounts())
	assert.Equal(t, map[string]int{CategoryIndex: 2, DefinitionIndex: 6, ContentIndex: 6}, set.TermCounts())

	t.Run("category text covers name and display name", func(t *testing.T) {
		assert.Equal(t, []string{"c1"}, set.Categories.Search("orders", 5))
		assert.Equal(t, []string{"c1"}, set.Categories.Search("sales", 5))
	})

	t.Run("definition text covers id and name", func(t *testing.T) {
		assert.Equal(t, []string{"DEF1"}, set.Definitions.Search("def1", 8))
		assert.Equal(t, []string{"DEF2"}, set.Definitions.Search("query", 8))
		assert.Empty(t, set.Definitions.Search("orders", 8))
	})

	t.Run("content index skips empty code", func(t *testing.T) {
		assert.Equal(t, []string{"DEF2"}, set.Content.Search("orders", 10))
		assert.Empty(t, set.Content.Search("def3", 10))
		assert.Empty(t, set.Content.Search("blank", 10))
		assert.Empty(t, set.Content.Search("def1", 10), "definitions without content are not indexed")
	})
}

func TestBuilder_Memoizes(t *testing.T) {
	rec := &recorder{}
	b := NewBuilder(WithRecorder(rec), WithLogger(nil))

	first := b.Build(snapshot("SELECT 1"))
	again := b.Build(snapshot("SELECT 1"))
	assert.Same(t, first, again, "equal contents reuse the built set")
	assert.Equal(t, 1, rec.rebuilt)
	assert.Equal(t, 1, rec.reused)
	assert.Equal(t, 1, rec.docs[ContentIndex])

	changed := b.Build(snapshot("SELECT 2"))
	assert.NotSame(t, first, changed)
	assert.Equal(t, 2, rec.rebuilt)
	assert.Empty(t, changed.Content.Search("1", 10))
	assert.Equal(t, []string{"DEF2"}, changed.Content.Search("2", 10))

	// The earlier set is left untouched by the rebuild.
	assert.Equal(t, []string{"DEF2"}, first.Content.Search("1", 10))
}

func TestBuilder_SeparateBuildersDoNotShare(t *testing.T) {
	snap := snapshot("SELECT 1")
	a := NewBuilder().Build(snap)
	b := NewBuilder().Build(snap)
	require.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotSame(t, a.Categories, b.Categories)
	assert.NotSame(t, a.Content, b.Content)
}

func TestBuilder_EmptySnapshot(t *testing.T) {
	set := NewBuilder().Build(catalog.Empty())
	assert.Equal(t, map[string]int{CategoryIndex: 0, DefinitionIndex: 0, ContentIndex: 0}, set.DocCounts())
	assert.Equal(t, map[string]int{CategoryIndex: 0, DefinitionIndex: 0, ContentIndex: 0}, set.TermCounts())
}
