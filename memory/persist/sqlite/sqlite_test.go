package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiabhi150614/edu-ai-pro/core"
	"github.com/abhiabhi150614/edu-ai-pro/memory"
)

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	return store, func() {
		require.NoError(t, store.Close())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	snap := &memory.Snapshot{
		UserID: "user-1",
		Turns: []core.ConversationTurn{
			{Speaker: core.SpeakerUser, Text: "what is recursion?", Timestamp: now},
			{Speaker: core.SpeakerAgent, Text: "a function calling itself", Timestamp: now.Add(time.Second)},
		},
		Events: []core.EpisodicEvent{
			{
				ID:        42,
				Kind:      core.EventResourceFound,
				Payload:   map[string]interface{}{"title": "Recursion explained", "url": "https://example.com/v1"},
				ConceptID: "recursion",
				Timestamp: now,
			},
		},
		TouchedConcepts: []string{"recursion"},
	}

	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.LoadSnapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, core.SpeakerUser, got.Turns[0].Speaker)
	assert.Equal(t, "what is recursion?", got.Turns[0].Text)
	require.Len(t, got.Events, 1)
	assert.Equal(t, int64(42), got.Events[0].ID)
	assert.Equal(t, core.EventResourceFound, got.Events[0].Kind)
	assert.Equal(t, "Recursion explained", got.Events[0].Payload["title"])
	assert.Equal(t, "recursion", got.Events[0].ConceptID)
	assert.Equal(t, []string{"recursion"}, got.TouchedConcepts)
}

func TestSaveSnapshotReplacesExisting(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	first := &memory.Snapshot{
		UserID: "user-1",
		Turns:  []core.ConversationTurn{{Speaker: core.SpeakerUser, Text: "old", Timestamp: time.Now()}},
	}
	require.NoError(t, store.SaveSnapshot(ctx, first))

	second := &memory.Snapshot{
		UserID: "user-1",
		Turns:  []core.ConversationTurn{{Speaker: core.SpeakerUser, Text: "new", Timestamp: time.Now()}},
	}
	require.NoError(t, store.SaveSnapshot(ctx, second))

	got, err := store.LoadSnapshot(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "new", got.Turns[0].Text)
}

func TestLoadSnapshotUnknownUser(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	got, err := store.LoadSnapshot(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got.Turns)
	assert.Empty(t, got.Events)
	assert.Empty(t, got.TouchedConcepts)
}

func TestSaveSnapshotValidation(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	err := store.SaveSnapshot(context.Background(), &memory.Snapshot{})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestGraphRoundTrip(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	g := memory.NewGraph()
	require.NoError(t, g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 0.9))
	require.NoError(t, g.UpsertConceptEdge("recursion", "trees", core.RelationRelatedTo, 0.5))
	require.NoError(t, g.UpsertResourceEdge("recursion", memory.ResourceNode{
		ID:        "vid-1",
		Kind:      core.ResourceVideo,
		Reference: "https://example.com/v1",
	}, 0.8))

	require.NoError(t, store.SaveGraph(ctx, g))

	restored, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, g.EdgeCount(), restored.EdgeCount())

	edge, ok := restored.Edge("loops", "recursion", core.RelationPrerequisiteOf)
	require.True(t, ok)
	assert.Equal(t, 0.9, edge.Weight)

	path := restored.ReviewPath("recursion", 2)
	require.Len(t, path, 1)
	assert.Equal(t, "loops", path[0].ID)

	res := restored.Resources("recursion")
	require.Len(t, res, 1)
	assert.Equal(t, "vid-1", res[0].ID)
}
