package dialog

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library() *catalog.Library {
	return catalog.NewLibrary(catalog.NewSnapshot(
		[]catalog.Category{
			{CategoryID: "c1", CategoryName: "Orders", DisplayName: "Orders"},
			{CategoryID: "c2", CategoryName: "Empty", DisplayName: "Empty"},
		},
		[]catalog.Definition{
			{DefinitionID: "DEF1", DefinitionName: "GetOrders", CategoryID: "c1"},
			{DefinitionID: "DEF2", DefinitionName: "Query", CategoryID: "c1"},
		},
		catalog.ContentMap{
			"DEF2": {Code: "SELECT id FROM orders WHERE active = 1", Language: "sql", Type: "sql"},
		},
	))
}

type harness struct {
	activation *Activation
	dialog     *Dialog
	commits    []Selection
}

func newHarness() *harness {
	h := &harness{activation: NewActivation()}
	h.dialog = New(h.activation, engine.New(config.DefaultSearchConfig()), library(),
		WithCommitHandler(func(s Selection) { h.commits = append(h.commits, s) }),
	)
	return h
}

func TestDialog_Lifecycle(t *testing.T) {
	h := newHarness()
	d := h.dialog
	assert.Equal(t, StateClosed, d.State())

	d.Open()
	assert.Equal(t, StateOpenEmpty, d.State())
	assert.Equal(t, engine.StatusPrompt, d.Status())

	d.SetQuery("orders")
	assert.Equal(t, StateOpenWithResults, d.State())
	assert.Equal(t, engine.StatusMatches, d.Status())
	require.Len(t, d.Results(), 2)

	d.SetQuery("nothing here")
	assert.Equal(t, StateOpenEmpty, d.State())
	assert.Equal(t, engine.StatusNoMatches, d.Status())

	d.Cancel()
	assert.Equal(t, StateClosed, d.State())
	assert.Empty(t, d.Query())
	assert.Empty(t, d.Results())
	assert.Empty(t, h.commits)
}

func TestDialog_CommitTranslatesContentToDefinition(t *testing.T) {
	h := newHarness()
	d := h.dialog
	d.Open()
	d.SetQuery("orders")

	// [category c1, content DEF2]
	d.MoveDown()
	cur, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, engine.KindContent, cur.Kind)

	sel, ok := d.Commit()
	require.True(t, ok)
	assert.Equal(t, Selection{Kind: engine.KindDefinition, ID: "DEF2"}, sel)
	assert.Equal(t, []Selection{sel}, h.commits)
	assert.Equal(t, StateClosed, d.State())
}

func TestDialog_CommitWithNoResultsIsNoop(t *testing.T) {
	h := newHarness()
	d := h.dialog
	d.Open()
	d.SetQuery("zzz")
	require.Equal(t, StateOpenEmpty, d.State())

	_, ok := d.Commit()
	assert.False(t, ok)
	assert.Empty(t, h.commits)
	assert.Equal(t, StateOpenEmpty, d.State())
	assert.Equal(t, "zzz", d.Query())

	assert.True(t, d.HandleKey(KeyEvent{Key: KeyEnter}))
	assert.Empty(t, h.commits)
	assert.Equal(t, StateOpenEmpty, d.State())
}

func TestDialog_ReopenResets(t *testing.T) {
	h := newHarness()
	d := h.dialog
	d.Open()
	d.SetQuery("orders")
	d.MoveDown()
	d.Cancel()

	h.activation.HandleChord(KeyEvent{Key: "k", Meta: true})
	assert.Equal(t, StateOpenEmpty, d.State())
	assert.Empty(t, d.Query())
	assert.Equal(t, 0, d.Cursor())
}

func TestDialog_NewQueryResetsCursor(t *testing.T) {
	h := newHarness()
	d := h.dialog
	d.Open()
	d.SetQuery("orders")
	d.MoveDown()
	require.Equal(t, 1, d.Cursor())

	d.SetQuery("ORDERS")
	assert.Equal(t, 0, d.Cursor())
}

func TestDialog_HandleKey(t *testing.T) {
	h := newHarness()
	d := h.dialog

	assert.False(t, d.HandleKey(KeyEvent{Key: KeyArrowDown}), "navigation ignored while closed")
	assert.True(t, d.HandleKey(KeyEvent{Key: "k", Ctrl: true}))
	assert.Equal(t, StateOpenEmpty, d.State())

	d.SetQuery("orders")
	assert.True(t, d.HandleKey(KeyEvent{Key: KeyArrowDown}))
	assert.True(t, d.HandleKey(KeyEvent{Key: KeyArrowDown}))
	assert.Equal(t, 1, d.Cursor())
	assert.True(t, d.HandleKey(KeyEvent{Key: KeyArrowUp}))
	assert.True(t, d.HandleKey(KeyEvent{Key: KeyArrowUp}))
	assert.Equal(t, 0, d.Cursor())
	assert.False(t, d.HandleKey(KeyEvent{Key: "a"}))

	assert.True(t, d.HandleKey(KeyEvent{Key: KeyEnter}))
	assert.Equal(t, []Selection{{Kind: engine.KindCategory, ID: "c1"}}, h.commits)
	assert.Equal(t, StateClosed, d.State())

	d.Open()
	d.SetQuery("orders")
	assert.True(t, d.HandleKey(KeyEvent{Key: KeyEscape}))
	assert.Equal(t, StateClosed, d.State())
	assert.Len(t, h.commits, 1)
}

func TestDialog_SetQueryWhileClosed(t *testing.T) {
	h := newHarness()
	h.dialog.SetQuery("orders")
	assert.Empty(t, h.dialog.Results())
	assert.Equal(t, StateClosed, h.dialog.State())
}

func TestDialog_Highlight(t *testing.T) {
	var highlighted []string
	d := New(NewActivation(), engine.New(config.DefaultSearchConfig()), library(),
		WithHighlightHandler(func(r engine.Result) { highlighted = append(highlighted, r.ID) }),
	)
	d.Open()
	d.SetQuery("orders")
	d.MoveDown()
	d.MoveDown()
	d.MoveUp()

	assert.Equal(t, []string{"c1", "DEF2", "c1"}, highlighted)
}

func TestResolve(t *testing.T) {
	snap := library().Current()

	def, ok := Resolve(snap, Selection{Kind: engine.KindCategory, ID: "c1"})
	require.True(t, ok)
	assert.Equal(t, "DEF1", def.DefinitionID)

	def, ok = Resolve(snap, Selection{Kind: engine.KindDefinition, ID: "DEF2"})
	require.True(t, ok)
	assert.Equal(t, "Query", def.DefinitionName)

	_, ok = Resolve(snap, Selection{Kind: engine.KindCategory, ID: "c2"})
	assert.False(t, ok, "category without definitions")
	_, ok = Resolve(snap, Selection{Kind: engine.KindDefinition, ID: "missing"})
	assert.False(t, ok)
}
