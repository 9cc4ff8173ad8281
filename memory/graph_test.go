package memory

import (
	"testing"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

func TestUpsertConceptEdgeIdempotent(t *testing.T) {
	g := NewGraph()

	if err := g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 0.5); err != nil {
		t.Fatalf("UpsertConceptEdge failed: %v", err)
	}
	if err := g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 0.9); err != nil {
		t.Fatalf("UpsertConceptEdge failed: %v", err)
	}

	if got := g.EdgeCount(); got != 1 {
		t.Errorf("expected 1 edge after re-upsert, got %d", got)
	}
	edge, ok := g.Edge("loops", "recursion", core.RelationPrerequisiteOf)
	if !ok {
		t.Fatal("expected edge to exist")
	}
	if edge.Weight != 0.9 {
		t.Errorf("expected last-writer weight 0.9, got %f", edge.Weight)
	}
}

func TestUpsertCreatesMissingEndpoints(t *testing.T) {
	g := NewGraph()

	if err := g.UpsertConceptEdge("Hash Tables", "arrays", core.RelationRelatedTo, 0.4); err != nil {
		t.Fatalf("UpsertConceptEdge failed: %v", err)
	}

	c, ok := g.Concept("hash tables")
	if !ok {
		t.Fatal("expected endpoint concept to be created")
	}
	if c.ID != "hash-tables" {
		t.Errorf("expected normalized id hash-tables, got %q", c.ID)
	}
	if c.DisplayName != "Hash Tables" {
		t.Errorf("expected display name preserved, got %q", c.DisplayName)
	}
}

func TestUpsertRejectsEmptyEndpoints(t *testing.T) {
	g := NewGraph()
	err := g.UpsertConceptEdge("  ", "recursion", core.RelationRelatedTo, 1)
	if err == nil {
		t.Fatal("expected validation error for blank endpoint")
	}
}

func TestNeighborsOrderedByWeightThenInsertion(t *testing.T) {
	g := NewGraph()
	g.UpsertConceptEdge("recursion", "trees", core.RelationRelatedTo, 0.5)
	g.UpsertConceptEdge("recursion", "stacks", core.RelationRelatedTo, 0.9)
	g.UpsertConceptEdge("recursion", "graphs", core.RelationRelatedTo, 0.5)

	got := g.Neighbors("recursion", 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 neighbors, got %d", len(got))
	}
	// Heaviest first; equal weights keep insertion order.
	wantOrder := []string{"stacks", "trees", "graphs"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("neighbor %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestNeighborsLimit(t *testing.T) {
	g := NewGraph()
	g.UpsertConceptEdge("recursion", "trees", core.RelationRelatedTo, 0.5)
	g.UpsertConceptEdge("recursion", "stacks", core.RelationRelatedTo, 0.9)

	got := g.Neighbors("recursion", 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 neighbor, got %d", len(got))
	}
	if got[0].ID != "stacks" {
		t.Errorf("expected heaviest neighbor to survive the cut, got %s", got[0].ID)
	}
}

func TestReviewPathFollowsPrerequisitesBackward(t *testing.T) {
	g := NewGraph()
	// variables -> loops -> recursion
	g.UpsertConceptEdge("variables", "loops", core.RelationPrerequisiteOf, 1)
	g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 1)
	// unrelated edge must not appear
	g.UpsertConceptEdge("recursion", "trees", core.RelationRelatedTo, 1)

	path := g.ReviewPath("recursion", 2)
	if len(path) != 2 {
		t.Fatalf("expected 2 prerequisites, got %d", len(path))
	}
	if path[0].ID != "loops" || path[1].ID != "variables" {
		t.Errorf("expected [loops variables], got [%s %s]", path[0].ID, path[1].ID)
	}
}

func TestReviewPathDepthBound(t *testing.T) {
	g := NewGraph()
	g.UpsertConceptEdge("variables", "loops", core.RelationPrerequisiteOf, 1)
	g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 1)

	path := g.ReviewPath("recursion", 1)
	if len(path) != 1 {
		t.Fatalf("expected depth 1 to yield 1 concept, got %d", len(path))
	}
	if path[0].ID != "loops" {
		t.Errorf("expected loops, got %s", path[0].ID)
	}
}

func TestReviewPathTerminatesOnCycle(t *testing.T) {
	g := NewGraph()
	g.UpsertConceptEdge("a", "b", core.RelationPrerequisiteOf, 1)
	g.UpsertConceptEdge("b", "c", core.RelationPrerequisiteOf, 1)
	g.UpsertConceptEdge("c", "a", core.RelationPrerequisiteOf, 1)

	path := g.ReviewPath("a", 10)
	if len(path) != 2 {
		t.Fatalf("expected cycle traversal to visit each node once, got %d", len(path))
	}
	seen := map[string]bool{}
	for _, c := range path {
		if seen[c.ID] {
			t.Errorf("concept %s visited twice", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestResourcesForConcept(t *testing.T) {
	g := NewGraph()
	g.UpsertResourceEdge("recursion", ResourceNode{ID: "vid-low", Kind: core.ResourceVideo, Reference: "https://example.com/low"}, 0.2)
	g.UpsertResourceEdge("recursion", ResourceNode{ID: "vid-high", Kind: core.ResourceVideo, Reference: "https://example.com/high"}, 0.8)

	got := g.Resources("recursion")
	if len(got) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(got))
	}
	if got[0].ID != "vid-high" {
		t.Errorf("expected heaviest resource first, got %s", got[0].ID)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	g := NewGraph()
	g.UpsertConceptEdge("loops", "recursion", core.RelationPrerequisiteOf, 0.7)
	g.UpsertResourceEdge("recursion", ResourceNode{ID: "vid-1", Kind: core.ResourceVideo, Reference: "https://example.com/v1"}, 0.5)

	concepts, resources, edges := g.Export()

	fresh := NewGraph()
	fresh.Restore(concepts, resources, edges)

	if fresh.EdgeCount() != g.EdgeCount() {
		t.Errorf("expected %d edges after restore, got %d", g.EdgeCount(), fresh.EdgeCount())
	}
	if path := fresh.ReviewPath("recursion", 2); len(path) != 1 || path[0].ID != "loops" {
		t.Errorf("restored graph lost the prerequisite edge: %v", path)
	}
}

func TestConceptIDNormalization(t *testing.T) {
	cases := map[string]string{
		"Recursion":       "recursion",
		"  Hash Tables  ": "hash-tables",
		"C++ Basics":      "c-basics",
		"day 5":           "day-5",
	}
	for in, want := range cases {
		if got := ConceptID(in); got != want {
			t.Errorf("ConceptID(%q) = %q, want %q", in, got, want)
		}
	}
}
