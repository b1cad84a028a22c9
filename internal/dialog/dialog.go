// Package dialog drives the keyboard search dialog: activation, the result
// cursor, and the commit of a selection back to the host.
package dialog

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
)

// State is the dialog's coarse state.
type State int

const (
	StateClosed State = iota
	StateOpenEmpty
	StateOpenWithResults
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpenEmpty:
		return "open_empty"
	case StateOpenWithResults:
		return "open_with_results"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Selection is handed to the host on commit. Kind is only ever
// KindCategory or KindDefinition.
type Selection struct {
	Kind engine.Kind `json:"kind"`
	ID   string      `json:"id"`
}

// Searcher runs a query against a snapshot.
type Searcher interface {
	Search(snap *catalog.Snapshot, rawQuery string) engine.Response
}

// SnapshotSource supplies the snapshot to search. *catalog.Library satisfies it.
type SnapshotSource interface {
	Current() *catalog.Snapshot
}

type Option func(*Dialog)

// WithCommitHandler sets the function that receives committed selections.
func WithCommitHandler(fn func(Selection)) Option {
	return func(d *Dialog) {
		d.onCommit = fn
	}
}

// WithHighlightHandler sets a function called whenever the highlighted
// result changes.
func WithHighlightHandler(fn func(engine.Result)) Option {
	return func(d *Dialog) {
		d.onHighlight = fn
	}
}

// Dialog is owned by a single session and is not safe for concurrent use.
type Dialog struct {
	activation  *Activation
	searcher    Searcher
	source      SnapshotSource
	query       string
	status      engine.Status
	cursor      Cursor
	onCommit    func(Selection)
	onHighlight func(engine.Result)
}

// New wires a dialog to activation. Opening through activation resets the
// dialog; closing discards its query and results.
func New(activation *Activation, searcher Searcher, source SnapshotSource, opts ...Option) *Dialog {
	d := &Dialog{
		activation: activation,
		searcher:   searcher,
		source:     source,
		status:     engine.StatusPrompt,
	}
	for _, opt := range opts {
		opt(d)
	}
	activation.OnChange(func(bool) { d.reset() })
	return d
}

func (d *Dialog) State() State {
	switch {
	case !d.activation.IsOpen():
		return StateClosed
	case d.cursor.Len() == 0:
		return StateOpenEmpty
	default:
		return StateOpenWithResults
	}
}

func (d *Dialog) Query() string {
	return d.query
}

// Status tells the host whether to show the prompt, a no-match message, or
// the results.
func (d *Dialog) Status() engine.Status {
	return d.status
}

func (d *Dialog) Results() []engine.Result {
	return d.cursor.Results()
}

func (d *Dialog) Cursor() int {
	return d.cursor.Index()
}

func (d *Dialog) Current() (engine.Result, bool) {
	return d.cursor.Current()
}

func (d *Dialog) Open() {
	d.activation.Open()
}

// SetQuery re-runs the search for q and replaces the result list. It does
// nothing while the dialog is closed.
func (d *Dialog) SetQuery(q string) {
	if !d.activation.IsOpen() {
		return
	}
	resp := d.searcher.Search(d.source.Current(), q)
	d.query = q
	d.status = resp.Status
	d.cursor.Replace(resp.Results)
	d.highlight()
}

func (d *Dialog) MoveDown() {
	before := d.cursor.Index()
	d.cursor.MoveDown()
	if d.cursor.Index() != before {
		d.highlight()
	}
}

func (d *Dialog) MoveUp() {
	before := d.cursor.Index()
	d.cursor.MoveUp()
	if d.cursor.Index() != before {
		d.highlight()
	}
}

// Commit emits the highlighted result and closes the dialog. With no results
// it does nothing and reports false.
func (d *Dialog) Commit() (Selection, bool) {
	if !d.activation.IsOpen() {
		return Selection{}, false
	}
	current, ok := d.cursor.Current()
	if !ok {
		return Selection{}, false
	}
	sel := Selection{Kind: current.Kind.Target(), ID: current.ID}
	if d.onCommit != nil {
		d.onCommit(sel)
	}
	d.activation.Close()
	return sel, true
}

func (d *Dialog) Cancel() {
	d.activation.Close()
}

// HandleKey routes a key press. The activation chord is always honoured;
// navigation keys only while the dialog is open. It reports whether the
// event was consumed.
func (d *Dialog) HandleKey(ev KeyEvent) bool {
	if d.activation.HandleChord(ev) {
		return true
	}
	if !d.activation.IsOpen() {
		return false
	}
	switch ev.Key {
	case KeyArrowDown:
		d.MoveDown()
	case KeyArrowUp:
		d.MoveUp()
	case KeyEnter:
		d.Commit()
	case KeyEscape:
		d.Cancel()
	default:
		return false
	}
	return true
}

func (d *Dialog) reset() {
	d.query = ""
	d.status = engine.StatusPrompt
	d.cursor.Replace(nil)
}

func (d *Dialog) highlight() {
	if d.onHighlight == nil {
		return
	}
	if current, ok := d.cursor.Current(); ok {
		d.onHighlight(current)
	}
}

// Resolve maps a selection to the definition the host should open. A
// category opens its first definition.
func Resolve(snap *catalog.Snapshot, sel Selection) (catalog.Definition, bool) {
	switch sel.Kind {
	case engine.KindDefinition, engine.KindContent:
		return snap.Definition(sel.ID)
	case engine.KindCategory:
		return snap.FirstDefinitionIn(sel.ID)
	default:
		return catalog.Definition{}, false
	}
}
