package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return New(config.DefaultSearchConfig())
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestSearch_EmptyQueryPrompts(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Orders", DisplayName: "Orders"}},
		nil, nil,
	)
	for _, q := range []string{"", "   ", "\t\n"} {
		resp := newEngine().Search(snap, q)
		assert.Equal(t, StatusPrompt, resp.Status)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	resp := newEngine().Search(catalog.Empty(), "anything")
	assert.Equal(t, StatusNoMatches, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestSearch_CategoryNameOnlyMatchesWholeTokens(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Orders", DisplayName: "Orders"}},
		[]catalog.Definition{{DefinitionID: "DEF1", DefinitionName: "GetOrders", CategoryID: "c1"}},
		catalog.ContentMap{},
	)

	resp := newEngine().Search(snap, "Orders")

	require.Len(t, resp.Results, 1)
	assert.Equal(t, Result{
		Kind:        KindCategory,
		ID:          "c1",
		Name:        "Orders",
		DisplayName: "Orders",
		MatchKind:   MatchName,
	}, resp.Results[0])
	assert.Equal(t, StatusMatches, resp.Status)
}

func contentSnapshot(code string) *catalog.Snapshot {
	return catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Reports", DisplayName: "Reports"}},
		[]catalog.Definition{{DefinitionID: "DEF2", DefinitionName: "Query", CategoryID: "c1"}},
		catalog.ContentMap{"DEF2": {Code: code, Language: "sql", Type: "sql"}},
	)
}

func TestSearch_ContentMatch(t *testing.T) {
	snap := contentSnapshot("SELECT id FROM orders WHERE active = 1")
	want := Result{
		Kind:       KindContent,
		ID:         "DEF2",
		Name:       "Query",
		CategoryID: "c1",
		MatchKind:  MatchContent,
		Snippet:    "SELECT id FROM orders WHERE active = 1",
	}

	for _, q := range []string{"orders", "ORDERS", "Orders"} {
		t.Run(q, func(t *testing.T) {
			resp := newEngine().Search(snap, q)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, want, resp.Results[0])
		})
	}
}

func TestSearch_EmptyCodeIsNeverIndexed(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Misc", DisplayName: "Misc"}},
		[]catalog.Definition{{DefinitionID: "DEF3", DefinitionName: "Blank", CategoryID: "c1"}},
		catalog.ContentMap{"DEF3": {Code: "", Language: "sql", Type: "sql"}},
	)
	e := newEngine()

	for _, q := range []string{"select", "from", "orders"} {
		resp := e.Search(snap, q)
		assert.Empty(t, resp.Results, q)
	}
	resp := e.Search(snap, "blank")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, KindDefinition, resp.Results[0].Kind)
}

func TestSearch_NameMatchSuppressesContentMatch(t *testing.T) {
	snap := catalog.NewSnapshot(
		nil,
		[]catalog.Definition{{DefinitionID: "DEF1", DefinitionName: "orders", CategoryID: "c1"}},
		catalog.ContentMap{"DEF1": {Code: "select * from orders"}},
	)

	resp := newEngine().Search(snap, "orders")

	require.Len(t, resp.Results, 1)
	assert.Equal(t, KindDefinition, resp.Results[0].Kind)
	assert.Equal(t, MatchName, resp.Results[0].MatchKind)
}

func TestSearch_ContentRequiresLiteralSubstring(t *testing.T) {
	snap := contentSnapshot("SELECT id FROM orders WHERE active = 1")
	e := newEngine()

	// Both tokens are indexed but the phrase is not present.
	assert.Empty(t, e.Search(snap, "orders from").Results)
	assert.Empty(t, e.Search(snap, "from  orders").Results)

	resp := e.Search(snap, "from orders")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, KindContent, resp.Results[0].Kind)
}

func TestSearch_OrderIsCategoriesDefinitionsContent(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "cat", CategoryName: "Active", DisplayName: "Active"}},
		[]catalog.Definition{
			{DefinitionID: "D1", DefinitionName: "Lookup", CategoryID: "cat"},
			{DefinitionID: "D2", DefinitionName: "Active Users", CategoryID: "cat"},
		},
		catalog.ContentMap{"D1": {Code: "where active = 1"}},
	)

	resp := newEngine().Search(snap, "active")

	require.Len(t, resp.Results, 3)
	assert.Equal(t, []Kind{KindCategory, KindDefinition, KindContent},
		[]Kind{resp.Results[0].Kind, resp.Results[1].Kind, resp.Results[2].Kind})
	assert.Equal(t, []string{"cat", "D2", "D1"}, ids(resp.Results))
}

func TestSearch_IDsAreUniqueAcrossKinds(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "X1", CategoryName: "Orders", DisplayName: "Orders"}},
		[]catalog.Definition{
			{DefinitionID: "X1", DefinitionName: "Orders Open", CategoryID: "X1"},
			{DefinitionID: "X2", DefinitionName: "Orders Closed", CategoryID: "X1"},
		},
		catalog.ContentMap{"X1": {Code: "select * from orders"}},
	)

	resp := newEngine().Search(snap, "orders")

	assert.Equal(t, []string{"X1", "X2"}, ids(resp.Results))
	assert.Equal(t, KindCategory, resp.Results[0].Kind)
	assert.Equal(t, KindDefinition, resp.Results[1].Kind)
}

func TestSearch_SkipsIDsMissingFromSnapshot(t *testing.T) {
	built := catalog.NewSnapshot(
		[]catalog.Category{{CategoryID: "c1", CategoryName: "Orders"}},
		[]catalog.Definition{{DefinitionID: "D1", DefinitionName: "Orders"}},
		catalog.ContentMap{"D9": {Code: "orders"}},
	)
	set := indexer.BuildIndexes(built)

	resp := Query(config.DefaultSearchConfig(), set, catalog.Empty(), "orders")

	assert.Equal(t, StatusNoMatches, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestSearch_RespectsCaps(t *testing.T) {
	var (
		cats    []catalog.Category
		defs    []catalog.Definition
		content = catalog.ContentMap{}
	)
	for i := 0; i < 30; i++ {
		cats = append(cats, catalog.Category{
			CategoryID:   fmt.Sprintf("c%02d", i),
			CategoryName: "shared",
		})
		defs = append(defs, catalog.Definition{
			DefinitionID:   fmt.Sprintf("n%02d", i),
			DefinitionName: "shared name",
		})
		id := fmt.Sprintf("b%02d", i)
		defs = append(defs, catalog.Definition{DefinitionID: id, DefinitionName: "Body"})
		content[id] = catalog.ContentEntry{Code: "select shared from t"}
	}
	snap := catalog.NewSnapshot(cats, defs, content)

	t.Run("defaults", func(t *testing.T) {
		resp := newEngine().Search(snap, "shared")
		assert.Len(t, resp.Results, 23)
		assert.Equal(t, map[string]int{"category": 5, "definition": 8, "content": 10}, resp.Counts())
	})

	t.Run("configured", func(t *testing.T) {
		e := New(config.SearchConfig{CategoryLimit: 1, DefinitionLimit: 2, ContentLimit: 3})
		resp := e.Search(snap, "shared")
		assert.Equal(t, map[string]int{"category": 1, "definition": 2, "content": 3}, resp.Counts())
		assert.Equal(t, 100, e.Config().SnippetMaxLen)
	})
}

func TestSearch_Properties(t *testing.T) {
	snap := catalog.NewSnapshot(
		[]catalog.Category{
			{CategoryID: "c1", CategoryName: "Orders", DisplayName: "Sales Orders"},
			{CategoryID: "c2", CategoryName: "Users", DisplayName: "Users"},
		},
		[]catalog.Definition{
			{DefinitionID: "D1", DefinitionName: "orders report", CategoryID: "c1"},
			{DefinitionID: "D2", DefinitionName: "Totals", CategoryID: "c1"},
			{DefinitionID: "D3", DefinitionName: "Users", CategoryID: "c2"},
			{DefinitionID: "D4", DefinitionName: "Script", CategoryID: "c2"},
		},
		catalog.ContentMap{
			"D1": {Code: "SELECT * FROM orders"},
			"D2": {Code: "SELECT sum(total) FROM orders\nGROUP BY user_id"},
			"D3": {Code: "SELECT * FROM users"},
			"D4": {Code: "const users = api.users();\nreturn users.filter(u => u.orders > 0);"},
		},
	)
	queries := []string{"orders", "users", "select", "from orders", "user", "total", "ORDERS", "u", "0", "sales orders"}
	e := newEngine()

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			resp := e.Search(snap, q)
			assert.LessOrEqual(t, len(resp.Results), e.Config().MaxResults())

			seen := map[string]bool{}
			names := map[string]bool{}
			for _, r := range resp.Results {
				assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
				seen[r.ID] = true
				if r.MatchKind == MatchName {
					names[r.ID] = true
				}
				if r.Kind == KindContent {
					entry, ok := snap.Content(r.ID)
					require.True(t, ok)
					assert.Contains(t, strings.ToLower(entry.Code), strings.ToLower(q))
					assert.False(t, names[r.ID])
				}
			}
		})
	}
}

func TestSearch_ReusesIndexesAcrossKeystrokes(t *testing.T) {
	rec := &buildRecorder{}
	b := indexer.NewBuilder(indexer.WithRecorder(rec))
	e := New(config.DefaultSearchConfig(), WithBuilder(b))
	snap := contentSnapshot("SELECT 1")

	for _, q := range []string{"s", "se", "sel", "sele"} {
		e.Search(snap, q)
	}
	assert.Equal(t, 1, rec.rebuilt)
	assert.Equal(t, 3, rec.reused)

	e.Search(contentSnapshot("SELECT 2"), "select")
	assert.Equal(t, 2, rec.rebuilt)
}

func TestSearch_RecordsQueries(t *testing.T) {
	rec := &queryRecorder{}
	e := New(config.DefaultSearchConfig(), WithRecorder(rec), WithLogger(nil))
	snap := contentSnapshot("SELECT id FROM orders")

	e.Search(snap, "")
	e.Search(snap, "orders")
	e.Search(snap, "missing")

	assert.Equal(t, []string{"prompt", "matches", "no_matches"}, rec.statuses)
	assert.Equal(t, 1, rec.counts[1]["content"])
	assert.Equal(t, 0, rec.last["content"])
}

type buildRecorder struct {
	reused  int
	rebuilt int
}

func (r *buildRecorder) IndexReused() { r.reused++ }

func (r *buildRecorder) IndexRebuilt(map[string]int, time.Duration) { r.rebuilt++ }

type queryRecorder struct {
	statuses []string
	counts   []map[string]int
	last     map[string]int
}

func (r *queryRecorder) QueryExecuted(status string, counts map[string]int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
	r.counts = append(r.counts, counts)
	r.last = counts
}
