package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivation_Chord(t *testing.T) {
	tests := []struct {
		name     string
		ev       KeyEvent
		consumed bool
	}{
		{"ctrl k", KeyEvent{Key: "k", Ctrl: true}, true},
		{"meta k", KeyEvent{Key: "k", Meta: true}, true},
		{"ctrl shift k", KeyEvent{Key: "K", Ctrl: true}, true},
		{"plain k", KeyEvent{Key: "k"}, false},
		{"ctrl j", KeyEvent{Key: "j", Ctrl: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewActivation()
			assert.Equal(t, tt.consumed, a.HandleChord(tt.ev))
			assert.Equal(t, tt.consumed, a.IsOpen())
		})
	}
}

func TestActivation_Observers(t *testing.T) {
	a := NewActivation()
	var seen []bool
	a.OnChange(func(open bool) { seen = append(seen, open) })

	a.Open()
	a.HandleChord(KeyEvent{Key: "k", Ctrl: true})
	a.Close()
	a.Close()

	assert.Equal(t, []bool{true, false}, seen, "only real transitions notify")
}
