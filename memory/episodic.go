package memory

import (
	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// episodicLog is the append-only action history for one user. Entries are
// never mutated or deleted; retention is delegated to whoever owns the
// snapshot store.
type episodicLog struct {
	events []core.EpisodicEvent
}

func (l *episodicLog) append(ev core.EpisodicEvent) {
	l.events = append(l.events, ev)
}

// all returns the log in append order.
func (l *episodicLog) all() []core.EpisodicEvent {
	out := make([]core.EpisodicEvent, len(l.events))
	copy(out, l.events)
	return out
}

// recentRelated returns up to limit events related to any of the given
// concept ids, newest first. With no concept filter it returns the newest
// events regardless of concept.
func (l *episodicLog) recentRelated(conceptIDs []string, limit int) []core.EpisodicEvent {
	if limit <= 0 {
		return nil
	}
	wanted := make(map[string]bool, len(conceptIDs))
	for _, id := range conceptIDs {
		wanted[id] = true
	}

	var out []core.EpisodicEvent
	for i := len(l.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := l.events[i]
		if len(wanted) > 0 && !wanted[ev.ConceptID] {
			continue
		}
		out = append(out, ev)
	}
	return out
}
