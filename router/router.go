// Package router turns user messages into validated capability invocations
// and synthesizes the final reply from their outcomes, via a pluggable
// reasoning service.
package router

import (
	"context"
	"log"

	"github.com/abhiabhi150614/edu-ai-pro/capability"
	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// ReasoningService is the external model behind routing and synthesis.
type ReasoningService interface {
	// Propose returns the capability calls the model wants for this message,
	// in proposal order. An empty slice means answer directly.
	Propose(ctx context.Context, message, contextText string, defs []*capability.Definition) ([]core.Invocation, error)

	// Synthesize produces the final natural-language reply from the message,
	// the assembled context, and the capability outcomes.
	Synthesize(ctx context.Context, message, contextText string, outcomes []core.Outcome) (string, error)
}

// Router validates reasoning-service proposals against the capability
// registry before anything is dispatched.
type Router struct {
	service  ReasoningService
	registry *capability.Registry
}

// New creates a Router over a reasoning service and a capability registry.
func New(service ReasoningService, registry *capability.Registry) *Router {
	return &Router{service: service, registry: registry}
}

// Route asks the reasoning service for capability proposals and filters out
// anything that fails validation. A reasoning-service failure degrades to no
// invocations; the turn continues without tools.
func (r *Router) Route(ctx context.Context, message, contextText string) []core.Invocation {
	proposals, err := r.service.Propose(ctx, message, contextText, r.registry.All())
	if err != nil {
		log.Printf("[ROUTER] Proposal failed, continuing without capabilities: %v", err)
		return nil
	}

	valid := make([]core.Invocation, 0, len(proposals))
	for _, inv := range proposals {
		if err := r.registry.Validate(inv); err != nil {
			log.Printf("[ROUTER] Dropping invalid proposal %s: %v", inv.Name, err)
			continue
		}
		valid = append(valid, inv)
	}
	return valid
}

// Synthesize produces the reply text for a turn.
func (r *Router) Synthesize(ctx context.Context, message, contextText string, outcomes []core.Outcome) (string, error) {
	return r.service.Synthesize(ctx, message, contextText, outcomes)
}
