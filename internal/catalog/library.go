package catalog

import (
	"log/slog"
	"sync/atomic"
)

// Library holds the current snapshot for a long-running service. Readers take
// the snapshot once per request so a request never mixes two snapshots.
type Library struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

func NewLibrary(initial *Snapshot) *Library {
	if initial == nil {
		initial = Empty()
	}
	l := &Library{logger: slog.Default().With("component", "catalog-library")}
	l.current.Store(initial)
	return l
}

func (l *Library) Current() *Snapshot {
	return l.current.Load()
}

// Replace swaps in snap and reports whether its contents differ from the
// snapshot it replaced.
func (l *Library) Replace(snap *Snapshot) bool {
	if snap == nil {
		return false
	}
	prev := l.current.Swap(snap)
	changed := prev.Fingerprint() != snap.Fingerprint()
	categories, definitions, content := snap.Len()
	l.logger.Info("snapshot replaced",
		"changed", changed,
		"categories", categories,
		"definitions", definitions,
		"content_entries", content,
	)
	return changed
}
