package memory

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// Recaller is the optional semantic recall layer: it indexes memory text and
// returns snippets similar to a query. The in-process implementation lives
// in memory/semantic.
type Recaller interface {
	Index(ctx context.Context, userID, text string) error
	Recall(ctx context.Context, userID, query string, limit int) ([]string, error)
}

// Snapshot is the per-user aggregate handed to a persistence collaborator:
// the conversation window, the episodic log, and the ids of graph concepts
// this user has touched (a logical view into the shared graph, not a copy).
type Snapshot struct {
	UserID          string                  `json:"user_id"`
	Turns           []core.ConversationTurn `json:"turns"`
	Events          []core.EpisodicEvent    `json:"events"`
	TouchedConcepts []string                `json:"touched_concepts"`
}

// userMemory is the live per-user state. Uniquely owned by one user id; no
// two sessions ever share a window.
type userMemory struct {
	mu      sync.Mutex
	window  *conversationWindow
	events  *episodicLog
	touched map[string]bool // concept ids this user has mentioned
}

// Store is the Memory Store: per-user snapshots plus the shared knowledge
// graph.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*userMemory
	graph  *Graph
	cfg    *Config
	recall Recaller
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRecaller attaches a semantic recall layer.
func WithRecaller(r Recaller) StoreOption {
	return func(s *Store) {
		s.recall = r
	}
}

// WithGraph seeds the store with an existing (e.g. restored) graph.
func WithGraph(g *Graph) StoreOption {
	return func(s *Store) {
		s.graph = g
	}
}

// NewStore creates a Memory Store.
func NewStore(cfg *Config, opts ...StoreOption) *Store {
	if cfg == nil {
		cfg = DefaultConfig
	}
	s := &Store{
		users: make(map[string]*userMemory),
		graph: NewGraph(),
		cfg:   cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Graph exposes the shared knowledge graph.
func (s *Store) Graph() *Graph {
	return s.graph
}

// user returns the per-user memory, creating it lazily on first touch.
func (s *Store) user(userID string) *userMemory {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u
	}
	u = &userMemory{
		window:  newConversationWindow(s.cfg.WindowSize),
		events:  &episodicLog{},
		touched: make(map[string]bool),
	}
	s.users[userID] = u
	return u
}

// AppendTurn appends a conversation turn, evicting the oldest once the
// window bound is exceeded. The turn's concepts are marked as touched and
// fed to the semantic index.
func (s *Store) AppendTurn(userID string, turn core.ConversationTurn) error {
	if userID == "" {
		return core.ValidationErrorf("user id is empty")
	}
	if strings.TrimSpace(turn.Text) == "" {
		return core.ValidationErrorf("turn text is empty")
	}
	if turn.Speaker != core.SpeakerUser && turn.Speaker != core.SpeakerAgent {
		return core.ValidationErrorf("unknown speaker %q", turn.Speaker)
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	u := s.user(userID)
	u.mu.Lock()
	u.window.append(turn)
	for _, c := range ExtractConcepts(turn.Text, s.cfg.Lexicon) {
		u.touched[ConceptID(c)] = true
	}
	u.mu.Unlock()

	s.index(userID, string(turn.Speaker)+": "+turn.Text)
	return nil
}

// AppendEpisodic appends an event to the user's permanent action log.
// Malformed events fail with a validation error; callers must not retry the
// same payload.
func (s *Store) AppendEpisodic(userID string, ev core.EpisodicEvent) error {
	if userID == "" {
		return core.ValidationErrorf("user id is empty")
	}
	if ev.Kind == "" {
		return core.ValidationErrorf("episodic event kind is empty")
	}
	if ev.ID == 0 {
		ev.ID = core.NewEventID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	u := s.user(userID)
	u.mu.Lock()
	u.events.append(ev)
	if ev.ConceptID != "" {
		u.touched[ev.ConceptID] = true
	}
	u.mu.Unlock()

	s.index(userID, "action "+string(ev.Kind)+": "+summarizeEvent(ev))
	return nil
}

// UpsertEdge links two concepts in the shared graph, creating missing
// endpoint nodes transactionally with the edge.
func (s *Store) UpsertEdge(fromConcept, toConcept string, relation core.Relation, weight float64) error {
	return s.graph.UpsertConceptEdge(fromConcept, toConcept, relation, weight)
}

// UpsertResourceEdge links a concept to a resource in the shared graph.
func (s *Store) UpsertResourceEdge(concept string, res ResourceNode, weight float64) error {
	return s.graph.UpsertResourceEdge(concept, res, weight)
}

// ClearConversation empties the conversation window only. Episodic events
// and graph entries are permanent history and are unaffected.
func (s *Store) ClearConversation(userID string) {
	u := s.user(userID)
	u.mu.Lock()
	u.window.clear()
	u.mu.Unlock()
	log.Printf("[MEMORY] Cleared conversation window for user=%s", userID)
}

// WindowSize reports the current number of turns in the user's window.
func (s *Store) WindowSize(userID string) int {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.window.size()
}

// ContextWindow assembles the relevance-ranked, size-bounded bundle for one
// turn: the conversation window newest first, up to K graph neighbors of
// concepts mentioned in the current message, and the most recent M episodic
// events related to those concepts. budget is a character ceiling; the
// bundle is truncated to fit by dropping lowest-ranked items first.
func (s *Store) ContextWindow(ctx context.Context, userID, message string, budget int) *core.ContextBundle {
	u := s.user(userID)

	concepts := ExtractConcepts(message, s.cfg.Lexicon)
	conceptIDs := make([]string, 0, len(concepts))
	for _, c := range concepts {
		conceptIDs = append(conceptIDs, ConceptID(c))
	}

	u.mu.Lock()
	turns := u.window.newestFirst()
	events := u.events.recentRelated(conceptIDs, s.cfg.MaxEvents)
	u.mu.Unlock()

	var neighbors []core.GraphNeighbor
	for _, c := range concepts {
		neighbors = append(neighbors, s.graph.Neighbors(c, s.cfg.MaxNeighbors)...)
	}
	neighbors = topNeighbors(neighbors, s.cfg.MaxNeighbors)

	bundle := &core.ContextBundle{Turns: turns, Neighbors: neighbors, Events: events}

	if s.recall != nil && message != "" {
		snippets, err := s.recall.Recall(ctx, userID, message, s.cfg.RecallLimit)
		if err != nil {
			log.Printf("[MEMORY] Semantic recall failed: %v", err)
		} else {
			bundle.Recall = snippets
		}
	}

	truncateToBudget(bundle, budget)
	return bundle
}

// Snapshot exports the user's memory for persistence.
func (s *Store) Snapshot(userID string) *Snapshot {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	touched := make([]string, 0, len(u.touched))
	for id := range u.touched {
		touched = append(touched, id)
	}
	return &Snapshot{
		UserID:          userID,
		Turns:           u.window.oldestFirst(),
		Events:          u.events.all(),
		TouchedConcepts: touched,
	}
}

// RestoreSnapshot loads a persisted snapshot, replacing any live state for
// that user.
func (s *Store) RestoreSnapshot(snap *Snapshot) error {
	if snap == nil || snap.UserID == "" {
		return core.ValidationErrorf("snapshot missing user id")
	}
	u := s.user(snap.UserID)
	u.mu.Lock()
	defer u.mu.Unlock()

	u.window = newConversationWindow(s.cfg.WindowSize)
	for _, t := range snap.Turns {
		u.window.append(t)
	}
	u.events = &episodicLog{events: append([]core.EpisodicEvent(nil), snap.Events...)}
	u.touched = make(map[string]bool, len(snap.TouchedConcepts))
	for _, id := range snap.TouchedConcepts {
		u.touched[id] = true
	}
	return nil
}

// ReviewPath lists the concepts to review before studying the named
// concept, nearest prerequisites first, bounded by the configured depth.
func (s *Store) ReviewPath(concept string) []ConceptNode {
	return s.graph.ReviewPath(concept, s.cfg.TraversalDepth)
}

// Lexicon returns the active concept vocabulary.
func (s *Store) Lexicon() []string {
	return s.cfg.Lexicon
}

func (s *Store) index(userID, text string) {
	if s.recall == nil {
		return
	}
	if err := s.recall.Index(context.Background(), userID, text); err != nil {
		log.Printf("[MEMORY] Semantic index failed: %v", err)
	}
}

func summarizeEvent(ev core.EpisodicEvent) string {
	var b strings.Builder
	for k, v := range ev.Payload {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if s, ok := v.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// topNeighbors deduplicates by node id (keeping the heaviest relation) and
// keeps the limit heaviest entries.
func topNeighbors(neighbors []core.GraphNeighbor, limit int) []core.GraphNeighbor {
	best := make(map[string]core.GraphNeighbor)
	var order []string
	for _, n := range neighbors {
		if cur, ok := best[n.ID]; !ok {
			best[n.ID] = n
			order = append(order, n.ID)
		} else if n.Weight > cur.Weight {
			best[n.ID] = n
		}
	}

	out := make([]core.GraphNeighbor, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	// Weight descending; equal weights keep first-seen order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// truncateToBudget drops lowest-ranked items until the bundle's rendered
// size fits. Drop order: oldest related events, lightest neighbors, oldest
// turns. The newest turn is never dropped.
func truncateToBudget(b *core.ContextBundle, budget int) {
	if budget <= 0 {
		return
	}
	for len(b.Format()) > budget {
		switch {
		case len(b.Events) > 0:
			b.Events = b.Events[:len(b.Events)-1]
		case len(b.Neighbors) > 0:
			b.Neighbors = b.Neighbors[:len(b.Neighbors)-1]
		case len(b.Turns) > 1:
			b.Turns = b.Turns[:len(b.Turns)-1]
		case len(b.Recall) > 0:
			b.Recall = b.Recall[:len(b.Recall)-1]
		default:
			return
		}
	}
}
