package memory

// Config holds Memory Store bounds.
type Config struct {
	// WindowSize is the conversation window bound N. Once exceeded, the
	// oldest turn is evicted (FIFO).
	WindowSize int

	// MaxNeighbors is the bound K on graph neighbors pulled into a context
	// bundle.
	MaxNeighbors int

	// MaxEvents is the bound M on related episodic events pulled into a
	// context bundle.
	MaxEvents int

	// TraversalDepth bounds backward prerequisite traversal.
	TraversalDepth int

	// RecallLimit bounds semantic recall snippets per bundle.
	RecallLimit int

	// Lexicon is the concept vocabulary used for extraction. Defaults to
	// DefaultLexicon when empty.
	Lexicon []string
}

// DefaultConfig returns sensible defaults.
var DefaultConfig = &Config{
	WindowSize:     20,
	MaxNeighbors:   8,
	MaxEvents:      5,
	TraversalDepth: 2,
	RecallLimit:    3,
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.WindowSize <= 0 {
		out.WindowSize = DefaultConfig.WindowSize
	}
	if out.MaxNeighbors <= 0 {
		out.MaxNeighbors = DefaultConfig.MaxNeighbors
	}
	if out.MaxEvents <= 0 {
		out.MaxEvents = DefaultConfig.MaxEvents
	}
	if out.TraversalDepth <= 0 {
		out.TraversalDepth = DefaultConfig.TraversalDepth
	}
	if out.RecallLimit <= 0 {
		out.RecallLimit = DefaultConfig.RecallLimit
	}
	if len(out.Lexicon) == 0 {
		out.Lexicon = DefaultLexicon
	}
	return &out
}
