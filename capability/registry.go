// Package capability defines the registry of agent capabilities and the
// adapters that execute them against external providers.
package capability

import (
	"context"
	"sort"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// Adapter executes a capability call against its provider.
type Adapter interface {
	Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

func (f AdapterFunc) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	return f(ctx, args)
}

// Definition describes one capability: its contract toward the reasoning
// service (name, description, schema) and its dispatch policy.
type Definition struct {
	// Name is the stable identifier the reasoning service proposes.
	Name string

	// Description tells the reasoning service when to pick this capability.
	Description string

	// InputSchema is the JSON-schema contract for arguments.
	InputSchema map[string]interface{}

	// SideEffecting marks capabilities that mutate external state. They are
	// never retried; read-only capabilities get one retry after a short
	// backoff.
	SideEffecting bool

	// Timeout bounds a single execution attempt.
	Timeout time.Duration

	// EventKind is the episodic event recorded on success.
	EventKind core.EventKind

	// Adapter executes the call.
	Adapter Adapter
}

// Registry is the static capability catalog, fixed at startup.
type Registry struct {
	defs  map[string]*Definition
	names []string // registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a capability. Registering a duplicate or incomplete
// definition is a startup bug and fails loudly.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return core.ValidationErrorf("capability definition missing name")
	}
	if def.Adapter == nil {
		return core.ValidationErrorf("capability %q has no adapter", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return core.ValidationErrorf("capability %q registered twice", def.Name)
	}
	if def.Timeout <= 0 {
		def.Timeout = 5 * time.Second
	}
	r.defs[def.Name] = def
	r.names = append(r.names, def.Name)
	return nil
}

// Get looks up a capability by name.
func (r *Registry) Get(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// All returns every definition in registration order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.defs[name])
	}
	return out
}

// Names returns all capability names, sorted.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

// MaxTimeout returns the largest per-capability timeout in the registry.
// The turn deadline is derived from it.
func (r *Registry) MaxTimeout() time.Duration {
	var max time.Duration
	for _, def := range r.defs {
		if def.Timeout > max {
			max = def.Timeout
		}
	}
	return max
}

// Validate checks proposed arguments against the named capability's schema.
func (r *Registry) Validate(inv core.Invocation) error {
	def, ok := r.defs[inv.Name]
	if !ok {
		return core.ErrUnknownCapability
	}
	return ValidateArgs(def.InputSchema, inv.Arguments)
}
