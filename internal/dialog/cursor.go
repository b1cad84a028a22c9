package dialog

import "github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"

// Cursor is the highlighted position in a result list. The index stays in
// [0, max(0, len(results)-1)] and movement clamps at both ends.
type Cursor struct {
	results []engine.Result
	index   int
}

// Replace swaps in a new result list and moves the cursor back to the top.
func (c *Cursor) Replace(results []engine.Result) {
	c.results = results
	c.index = 0
}

func (c *Cursor) MoveDown() {
	if c.index < len(c.results)-1 {
		c.index++
	}
}

func (c *Cursor) MoveUp() {
	if c.index > 0 {
		c.index--
	}
}

func (c *Cursor) Index() int {
	return c.index
}

func (c *Cursor) Len() int {
	return len(c.results)
}

func (c *Cursor) Results() []engine.Result {
	return c.results
}

// Current returns the highlighted result, or false when the list is empty.
func (c *Cursor) Current() (engine.Result, bool) {
	if len(c.results) == 0 {
		return engine.Result{}, false
	}
	return c.results[c.index], true
}
