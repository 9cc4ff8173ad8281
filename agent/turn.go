package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhiabhi150614/edu-ai-pro/capability"
	"github.com/abhiabhi150614/edu-ai-pro/core"
	"github.com/abhiabhi150614/edu-ai-pro/memory"
)

// processTurn runs the turn pipeline: assemble context, route, dispatch
// capabilities concurrently, synthesize, commit memory. Every stage
// degrades instead of failing the turn; the only hard error paths are
// caller cancellation and validation.
func (a *Agent) processTurn(ctx context.Context, userID, message string) (string, error) {
	deadline := a.registry.MaxTimeout() + a.opts.SynthesisBudget
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	bundle := a.store.ContextWindow(ctx, userID, message, a.opts.ContextBudget)
	contextText := bundle.Format()

	invocations := a.router.Route(ctx, message, contextText)
	log.Printf("[AGENT] user=%s routed %d capability calls", userID, len(invocations))

	outcomes := a.dispatch(ctx, invocations)

	reply, err := a.router.Synthesize(ctx, message, contextText, outcomes)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		log.Printf("[AGENT] user=%s synthesis failed, using fallback: %v", userID, err)
		reply = fallbackReply(outcomes)
	}

	a.commit(userID, message, reply, outcomes)
	return reply, nil
}

// dispatch fans the invocations out concurrently and joins all of them.
// Exactly one outcome comes back per invocation, in invocation order.
func (a *Agent) dispatch(ctx context.Context, invocations []core.Invocation) []core.Outcome {
	if len(invocations) == 0 {
		return nil
	}

	outcomes := make([]core.Outcome, len(invocations))
	var g errgroup.Group
	for i, inv := range invocations {
		i, inv := i, inv
		g.Go(func() error {
			outcomes[i] = a.invoke(ctx, inv)
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// invoke executes one capability call under its own timeout. Read-only
// capabilities get a single retry after a short backoff; side-effecting
// ones never do.
func (a *Agent) invoke(ctx context.Context, inv core.Invocation) core.Outcome {
	outcome := core.Outcome{
		Invocation: inv,
		ID:         core.NewInvocationID(),
		StartedAt:  time.Now(),
	}

	def, ok := a.registry.Get(inv.Name)
	if !ok {
		// Route already validated; reaching here means the registry changed
		// under us, which it never should.
		outcome.Status = core.OutcomeError
		outcome.Err = core.ErrUnknownCapability.Error()
		outcome.CompletedAt = time.Now()
		return outcome
	}

	result, err := a.attempt(ctx, def, inv.Arguments)
	if err != nil && !def.SideEffecting && ctx.Err() == nil {
		log.Printf("[AGENT] Retrying %s (id=%s) after error: %v", inv.Name, outcome.ID, err)
		select {
		case <-time.After(a.opts.RetryBackoff):
			result, err = a.attempt(ctx, def, inv.Arguments)
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	outcome.CompletedAt = time.Now()
	switch {
	case err == nil:
		outcome.Status = core.OutcomeSuccess
		outcome.Result = result
	case errors.Is(err, context.DeadlineExceeded):
		outcome.Status = core.OutcomeTimeout
		outcome.Err = core.ErrTimeout.Error()
		log.Printf("[AGENT] Capability %s (id=%s) timed out", inv.Name, outcome.ID)
	default:
		outcome.Status = core.OutcomeError
		outcome.Err = err.Error()
		log.Printf("[AGENT] Capability %s (id=%s) failed: %v", inv.Name, outcome.ID, err)
	}
	return outcome
}

func (a *Agent) attempt(ctx context.Context, def *capability.Definition, args map[string]interface{}) (map[string]interface{}, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()
	return def.Adapter.Execute(attemptCtx, args)
}

// commit writes the turn into memory: the user/agent turn pair, one
// episodic event per successful side-effect or lookup, and graph edges for
// co-mentioned concepts and found resources. Commit failures are logged
// and dropped; the reply has already been produced.
func (a *Agent) commit(userID, message, reply string, outcomes []core.Outcome) {
	now := time.Now()
	if err := a.store.AppendTurn(userID, core.ConversationTurn{Speaker: core.SpeakerUser, Text: message, Timestamp: now}); err != nil {
		log.Printf("[AGENT] Dropping user turn for user=%s: %v", userID, err)
	}
	if err := a.store.AppendTurn(userID, core.ConversationTurn{Speaker: core.SpeakerAgent, Text: reply, Timestamp: now.Add(time.Millisecond)}); err != nil {
		log.Printf("[AGENT] Dropping agent turn for user=%s: %v", userID, err)
	}

	concepts := memory.ExtractConcepts(message, a.store.Lexicon())
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			if err := a.store.UpsertEdge(concepts[i], concepts[j], core.RelationMentionedWith, 1.0); err != nil {
				log.Printf("[AGENT] Dropping edge %s-%s: %v", concepts[i], concepts[j], err)
			}
		}
	}

	var conceptID string
	if len(concepts) > 0 {
		conceptID = memory.ConceptID(concepts[0])
	}

	for _, o := range outcomes {
		if o.Status != core.OutcomeSuccess {
			continue
		}
		def, ok := a.registry.Get(o.Invocation.Name)
		if !ok || def.EventKind == "" {
			continue
		}
		ev := core.EpisodicEvent{
			Kind:      def.EventKind,
			Payload:   eventPayload(o),
			ConceptID: eventConcept(o, conceptID),
		}
		if err := a.store.AppendEpisodic(userID, ev); err != nil {
			log.Printf("[AGENT] Dropping episodic event for user=%s: %v", userID, err)
		}
		a.commitResources(o)
	}
}

// commitResources links videos found this turn to their topic in the graph.
func (a *Agent) commitResources(o core.Outcome) {
	if o.Invocation.Name != "resource_search" {
		return
	}
	topic, _ := o.Result["topic"].(string)
	if topic == "" {
		return
	}
	videos, _ := o.Result["videos"].([]map[string]interface{})
	for _, v := range videos {
		url, _ := v["url"].(string)
		if url == "" {
			continue
		}
		res := memory.ResourceNode{ID: url, Kind: core.ResourceVideo, Reference: url}
		if err := a.store.UpsertResourceEdge(topic, res, 1.0); err != nil {
			log.Printf("[AGENT] Dropping resource edge for %s: %v", topic, err)
		}
	}
}

// eventPayload flattens the outcome into the episodic record. Arguments
// come first so result keys win on collision.
func eventPayload(o core.Outcome) map[string]interface{} {
	payload := make(map[string]interface{}, len(o.Invocation.Arguments)+len(o.Result))
	for k, v := range o.Invocation.Arguments {
		payload[k] = v
	}
	for k, v := range o.Result {
		payload[k] = v
	}
	payload["capability"] = o.Invocation.Name
	return payload
}

func eventConcept(o core.Outcome, fallback string) string {
	if topic, _ := o.Invocation.Arguments["topic"].(string); topic != "" {
		return memory.ConceptID(topic)
	}
	return fallback
}

// fallbackReply is the templated degradation when synthesis fails: it
// still reports what succeeded so side effects are never silent.
func fallbackReply(outcomes []core.Outcome) string {
	var succeeded []string
	for _, o := range outcomes {
		if o.Status == core.OutcomeSuccess {
			succeeded = append(succeeded, strings.ReplaceAll(o.Invocation.Name, "_", " "))
		}
	}
	if len(succeeded) == 0 {
		return "I'm having trouble putting together a reply right now. Please try again in a moment."
	}
	return fmt.Sprintf(
		"I'm having trouble writing a full reply right now, but I did complete: %s. Ask me again in a moment for the details.",
		strings.Join(succeeded, ", "))
}
