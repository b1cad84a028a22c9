package dialog

// Activation holds the open/closed state of the search dialog. The host
// builds one at startup and hands it to every component that opens, closes
// or watches the dialog.
type Activation struct {
	open      bool
	observers []func(open bool)
}

func NewActivation() *Activation {
	return &Activation{}
}

func (a *Activation) IsOpen() bool {
	return a.open
}

// OnChange registers fn to run synchronously after every state change.
func (a *Activation) OnChange(fn func(open bool)) {
	a.observers = append(a.observers, fn)
}

func (a *Activation) Open() {
	a.set(true)
}

func (a *Activation) Close() {
	a.set(false)
}

// HandleChord opens the dialog on Ctrl+K or Meta+K and reports whether the
// event was consumed. The chord never closes an open dialog.
func (a *Activation) HandleChord(ev KeyEvent) bool {
	if !ev.IsActivationChord() {
		return false
	}
	a.Open()
	return true
}

func (a *Activation) set(open bool) {
	if a.open == open {
		return
	}
	a.open = open
	for _, fn := range a.observers {
		fn(open)
	}
}
