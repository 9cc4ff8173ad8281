package core

import (
	"time"
)

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// ConversationTurn is a single utterance in a user's session.
// Turns are immutable once appended to the conversation window.
type ConversationTurn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// EventKind categorizes episodic events by the capability that produced them.
type EventKind string

const (
	EventResourceFound       EventKind = "resource-found"
	EventNoteUpdated         EventKind = "note-updated"
	EventAchievementShared   EventKind = "achievement-shared"
	EventAssessmentCompleted EventKind = "assessment-completed"
	EventProgressChecked     EventKind = "progress-checked"
)

// EpisodicEvent records a successful agent action. Events are append-only:
// they are never mutated or deleted after being written, so the episodic log
// doubles as an audit trail of everything the agent did on a user's behalf.
type EpisodicEvent struct {
	ID        int64                  `json:"id"`
	Kind      EventKind              `json:"kind"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`

	// ConceptID links the event to a knowledge-graph concept, when known.
	ConceptID string `json:"concept_id,omitempty"`
}

// Relation labels a knowledge-graph edge.
type Relation string

const (
	RelationPrerequisiteOf Relation = "prerequisite_of"
	RelationRelatedTo      Relation = "related_to"
	RelationResourceFor    Relation = "resource_for"
	RelationMentionedWith  Relation = "mentioned_with"
)

// ResourceKind categorizes resource nodes in the knowledge graph.
type ResourceKind string

const (
	ResourceVideo      ResourceKind = "video"
	ResourceNote       ResourceKind = "note"
	ResourceAssessment ResourceKind = "assessment"
)

// Invocation is a proposed capability call: a name from the registry plus
// arguments already validated against that capability's schema.
type Invocation struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// OutcomeStatus classifies how a dispatched capability call ended.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeTimeout
	OutcomeError
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Outcome is the aggregated result of one dispatched capability invocation.
// Exactly one Outcome is produced per dispatched call; failed outcomes are
// surfaced to synthesis but never committed to episodic memory.
type Outcome struct {
	Invocation  Invocation
	ID          string // invocation id, for logging and audit
	Status      OutcomeStatus
	Result      map[string]interface{}
	Err         string
	StartedAt   time.Time
	CompletedAt time.Time
}

// GraphNeighbor is a concept or resource adjacent to a mentioned concept,
// selected for context enrichment.
type GraphNeighbor struct {
	ID          string
	DisplayName string
	Relation    Relation
	Weight      float64
}

// ContextBundle is the bounded context assembled for one turn: the
// conversation window (most recent first), graph neighbors of concepts
// mentioned in the last turn, and recent related episodic events.
type ContextBundle struct {
	Turns     []ConversationTurn
	Neighbors []GraphNeighbor
	Events    []EpisodicEvent

	// Recall holds semantically similar memory snippets when the semantic
	// index is enabled. Empty otherwise.
	Recall []string
}

// Empty reports whether the bundle carries no context at all.
func (b *ContextBundle) Empty() bool {
	return len(b.Turns) == 0 && len(b.Neighbors) == 0 && len(b.Events) == 0 && len(b.Recall) == 0
}
