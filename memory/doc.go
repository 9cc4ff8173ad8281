// Package memory owns the multi-layer memory of the learning agent.
//
// Four layers are kept per user:
//   - Conversation window: the most recent N turns, FIFO-evicted.
//   - Episodic log: append-only record of successful agent actions.
//   - Knowledge graph: shared concept/resource adjacency, upsert-only.
//   - Semantic recall: optional embedding index over memory text.
//
// Memory is partitioned per user. Turn mutations for one user are issued
// only by that user's session actor, so the store needs no cross-component
// locking; internal locks exist only where lazy snapshot creation and the
// shared graph can see writers from different sessions.
//
// Integration:
//   - ContextWindow assembles the bounded bundle before each turn.
//   - AppendTurn/AppendEpisodic/UpsertEdge commit the turn afterwards.
//
// "Clear chat" empties only the conversation window. The episodic log and
// the knowledge graph are permanent history.
package memory
