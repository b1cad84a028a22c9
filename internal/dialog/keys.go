package dialog

import "strings"

// Navigation key names.
const (
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// KeyEvent is a key press delivered by the host.
type KeyEvent struct {
	Key  string
	Ctrl bool
	Meta bool
}

// IsActivationChord reports whether ev is Ctrl+K or Meta+K.
func (ev KeyEvent) IsActivationChord() bool {
	return (ev.Ctrl || ev.Meta) && strings.EqualFold(ev.Key, "k")
}
