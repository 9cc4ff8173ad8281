// Package sqlite persists memory snapshots and the knowledge graph in an
// embedded SQLite database so state survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abhiabhi150614/edu-ai-pro/core"
	"github.com/abhiabhi150614/edu-ai-pro/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversation_turns (
	user_id    TEXT NOT NULL,
	position   INTEGER NOT NULL,
	speaker    TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, position)
);

CREATE TABLE IF NOT EXISTS episodic_events (
	id         INTEGER PRIMARY KEY,
	user_id    TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	concept_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodic_user ON episodic_events(user_id);

CREATE TABLE IF NOT EXISTS touched_concepts (
	user_id    TEXT NOT NULL,
	concept_id TEXT NOT NULL,
	PRIMARY KEY (user_id, concept_id)
);

CREATE TABLE IF NOT EXISTS graph_concepts (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS graph_resources (
	id        TEXT PRIMARY KEY,
	kind      TEXT NOT NULL,
	reference TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS graph_edges (
	from_id    TEXT NOT NULL,
	to_id      TEXT NOT NULL,
	relation   TEXT NOT NULL,
	weight     REAL NOT NULL,
	seq        INTEGER NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(from_id, to_id, relation)
);
`

// Store persists memory snapshots and the knowledge graph.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the persisted state for one user with the given
// snapshot, atomically.
func (s *Store) SaveSnapshot(ctx context.Context, snap *memory.Snapshot) error {
	if snap == nil || snap.UserID == "" {
		return core.ValidationErrorf("snapshot missing user id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"conversation_turns", "episodic_events", "touched_concepts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", snap.UserID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, turn := range snap.Turns {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO conversation_turns (user_id, position, speaker, text, created_at) VALUES (?, ?, ?, ?, ?)",
			snap.UserID, i, string(turn.Speaker), turn.Text, turn.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	for _, ev := range snap.Events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO episodic_events (id, user_id, kind, payload, concept_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			ev.ID, snap.UserID, string(ev.Kind), string(payload), ev.ConceptID, ev.Timestamp.UTC())
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	for _, id := range snap.TouchedConcepts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO touched_concepts (user_id, concept_id) VALUES (?, ?)",
			snap.UserID, id)
		if err != nil {
			return fmt.Errorf("insert touched concept: %w", err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted state for one user. A user with no rows
// yields an empty snapshot, not an error.
func (s *Store) LoadSnapshot(ctx context.Context, userID string) (*memory.Snapshot, error) {
	if userID == "" {
		return nil, core.ValidationErrorf("user id is empty")
	}
	snap := &memory.Snapshot{UserID: userID}

	rows, err := s.db.QueryContext(ctx,
		"SELECT speaker, text, created_at FROM conversation_turns WHERE user_id = ? ORDER BY position",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var speaker, text string
		var ts time.Time
		if err := rows.Scan(&speaker, &text, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		snap.Turns = append(snap.Turns, core.ConversationTurn{
			Speaker: core.Speaker(speaker), Text: text, Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	evRows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, payload, concept_id, created_at FROM episodic_events WHERE user_id = ? ORDER BY created_at, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer evRows.Close()
	for evRows.Next() {
		var ev core.EpisodicEvent
		var kind, payload string
		if err := evRows.Scan(&ev.ID, &kind, &payload, &ev.ConceptID, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = core.EventKind(kind)
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		snap.Events = append(snap.Events, ev)
	}
	if err := evRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	tcRows, err := s.db.QueryContext(ctx,
		"SELECT concept_id FROM touched_concepts WHERE user_id = ? ORDER BY concept_id", userID)
	if err != nil {
		return nil, fmt.Errorf("query touched concepts: %w", err)
	}
	defer tcRows.Close()
	for tcRows.Next() {
		var id string
		if err := tcRows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan touched concept: %w", err)
		}
		snap.TouchedConcepts = append(snap.TouchedConcepts, id)
	}
	if err := tcRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate touched concepts: %w", err)
	}

	return snap, nil
}

// SaveGraph replaces the persisted knowledge graph with the given one.
func (s *Store) SaveGraph(ctx context.Context, g *memory.Graph) error {
	concepts, resources, edges := g.Export()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"graph_edges", "graph_resources", "graph_concepts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, c := range concepts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO graph_concepts (id, display_name) VALUES (?, ?)", c.ID, c.DisplayName)
		if err != nil {
			return fmt.Errorf("insert concept: %w", err)
		}
	}
	for _, r := range resources {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO graph_resources (id, kind, reference) VALUES (?, ?, ?)",
			r.ID, string(r.Kind), r.Reference)
		if err != nil {
			return fmt.Errorf("insert resource: %w", err)
		}
	}
	for i, e := range edges {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO graph_edges (from_id, to_id, relation, weight, seq, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			e.FromID, e.ToID, string(e.Relation), e.Weight, i, e.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}

	return tx.Commit()
}

// LoadGraph reads the persisted knowledge graph into a fresh Graph.
func (s *Store) LoadGraph(ctx context.Context) (*memory.Graph, error) {
	var concepts []memory.ConceptNode
	rows, err := s.db.QueryContext(ctx, "SELECT id, display_name FROM graph_concepts")
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c memory.ConceptNode
		if err := rows.Scan(&c.ID, &c.DisplayName); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concepts: %w", err)
	}

	var resources []memory.ResourceNode
	resRows, err := s.db.QueryContext(ctx, "SELECT id, kind, reference FROM graph_resources")
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer resRows.Close()
	for resRows.Next() {
		var r memory.ResourceNode
		var kind string
		if err := resRows.Scan(&r.ID, &kind, &r.Reference); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		r.Kind = core.ResourceKind(kind)
		resources = append(resources, r)
	}
	if err := resRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}

	// seq order preserves upsert insertion order, which the graph uses for
	// tie-breaking.
	var edges []memory.EdgeRecord
	edgeRows, err := s.db.QueryContext(ctx,
		"SELECT from_id, to_id, relation, weight, updated_at FROM graph_edges ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e memory.EdgeRecord
		var relation string
		if err := edgeRows.Scan(&e.FromID, &e.ToID, &relation, &e.Weight, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Relation = core.Relation(relation)
		edges = append(edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}

	g := memory.NewGraph()
	g.Restore(concepts, resources, edges)
	return g, nil
}
