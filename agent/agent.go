// Package agent orchestrates conversational turns: one session actor per
// user serializes turn processing over the shared memory store, capability
// registry, and reasoning router.
package agent

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/capability"
	"github.com/abhiabhi150614/edu-ai-pro/core"
	"github.com/abhiabhi150614/edu-ai-pro/memory"
	"github.com/abhiabhi150614/edu-ai-pro/router"
)

// Options tunes turn processing.
type Options struct {
	// ContextBudget is the character ceiling on an assembled context bundle.
	ContextBudget int

	// SynthesisBudget is the time reserved for routing and synthesis beyond
	// the slowest capability. The turn deadline is the registry's max
	// capability timeout plus this.
	SynthesisBudget time.Duration

	// RetryBackoff is the pause before the single retry of a failed
	// read-only capability.
	RetryBackoff time.Duration

	// MailboxSize bounds queued turns per session.
	MailboxSize int
}

func (o Options) withDefaults() Options {
	if o.ContextBudget <= 0 {
		o.ContextBudget = 8000
	}
	if o.SynthesisBudget <= 0 {
		o.SynthesisBudget = 30 * time.Second
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 200 * time.Millisecond
	}
	if o.MailboxSize <= 0 {
		o.MailboxSize = 16
	}
	return o
}

// Agent is the public entry point. All methods are safe for concurrent use;
// turns for the same user are processed strictly one at a time.
type Agent struct {
	store    *memory.Store
	router   *router.Router
	registry *capability.Registry
	opts     Options

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// New creates an Agent over its collaborators.
func New(store *memory.Store, rt *router.Router, registry *capability.Registry, opts Options) *Agent {
	return &Agent{
		store:    store,
		router:   rt,
		registry: registry,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*session),
	}
}

// HandleTurn processes one user message and returns the reply. Concurrent
// calls for the same user queue behind each other; calls for different
// users proceed in parallel.
func (a *Agent) HandleTurn(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", core.ValidationErrorf("user id is empty")
	}
	if strings.TrimSpace(message) == "" {
		return "", core.ValidationErrorf("message is empty")
	}

	s, err := a.session(userID)
	if err != nil {
		return "", err
	}
	return s.submit(ctx, message)
}

// ClearConversation empties the user's conversation window. Episodic and
// graph memory are untouched. Safe to call mid-turn; the window has its own
// lock.
func (a *Agent) ClearConversation(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ValidationErrorf("user id is empty")
	}
	a.store.ClearConversation(userID)
	return nil
}

// Close stops all session actors. In-flight turns finish; subsequent
// HandleTurn calls fail.
func (a *Agent) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	sessions := make([]*session, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	a.mu.Unlock()

	for _, s := range sessions {
		s.stop()
	}
	log.Printf("[AGENT] Stopped %d sessions", len(sessions))
}

func (a *Agent) session(userID string) (*session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, core.ValidationErrorf("agent is closed")
	}
	if s, ok := a.sessions[userID]; ok {
		return s, nil
	}
	s := newSession(userID, a)
	a.sessions[userID] = s
	log.Printf("[AGENT] Started session for user=%s", userID)
	return s, nil
}
