package memory

import (
	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// conversationWindow keeps the most recent turns for one user, bounded by
// the configured window size. Append evicts the oldest entry once the bound
// is exceeded; turns are immutable after append.
type conversationWindow struct {
	turns []core.ConversationTurn
	bound int
}

func newConversationWindow(bound int) *conversationWindow {
	return &conversationWindow{bound: bound}
}

func (w *conversationWindow) append(turn core.ConversationTurn) {
	w.turns = append(w.turns, turn)
	if len(w.turns) > w.bound {
		// FIFO eviction. Copy down rather than reslice so the evicted turn
		// does not pin the backing array.
		copy(w.turns, w.turns[1:])
		w.turns = w.turns[:w.bound]
	}
}

func (w *conversationWindow) size() int {
	return len(w.turns)
}

// newestFirst returns the window contents, most recent turn first.
func (w *conversationWindow) newestFirst() []core.ConversationTurn {
	out := make([]core.ConversationTurn, len(w.turns))
	for i, t := range w.turns {
		out[len(w.turns)-1-i] = t
	}
	return out
}

// oldestFirst returns the window contents in append order.
func (w *conversationWindow) oldestFirst() []core.ConversationTurn {
	out := make([]core.ConversationTurn, len(w.turns))
	copy(out, w.turns)
	return out
}

func (w *conversationWindow) clear() {
	w.turns = nil
}
