package memory

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// ConceptNode is a concept in the knowledge graph. The id is a stable key
// derived from the normalized concept name.
type ConceptNode struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ResourceNode is a learning resource (video, note, assessment) in the
// knowledge graph.
type ResourceNode struct {
	ID        string            `json:"id"`
	Kind      core.ResourceKind `json:"kind"`
	Reference string            `json:"reference"`
}

// EdgeRecord is one graph edge, exported for persistence and inspection.
type EdgeRecord struct {
	FromID    string        `json:"from_id"`
	ToID      string        `json:"to_id"`
	Relation  core.Relation `json:"relation"`
	Weight    float64       `json:"weight"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type edgeKey struct {
	from     string
	to       string
	relation core.Relation
}

type edge struct {
	weight    float64
	updatedAt time.Time
	seq       int // insertion order, tie-break after weight
}

// Graph is an explicit adjacency structure over concepts and resources:
// a node table plus an edge table keyed by (from, to, relation). The graph
// may contain cycles; all traversals carry a visited set.
//
// The graph is the only state shared across user sessions, so every method
// takes the internal lock. Upserts are last-writer-wins on weight.
type Graph struct {
	mu        sync.RWMutex
	concepts  map[string]ConceptNode
	resources map[string]ResourceNode
	edges     map[edgeKey]*edge
	out       map[string][]edgeKey // outgoing edges per node, insertion order
	in        map[string][]edgeKey // incoming edges per node, insertion order
	seq       int
}

// NewGraph creates an empty knowledge graph.
func NewGraph() *Graph {
	return &Graph{
		concepts:  make(map[string]ConceptNode),
		resources: make(map[string]ResourceNode),
		edges:     make(map[edgeKey]*edge),
		out:       make(map[string][]edgeKey),
		in:        make(map[string][]edgeKey),
	}
}

var conceptIDPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ConceptID derives the stable node key from a concept name.
func ConceptID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = conceptIDPattern.ReplaceAllString(id, "-")
	return strings.Trim(id, "-")
}

// UpsertConceptEdge links two concepts, creating missing endpoint nodes
// first. Re-adding an existing (from, to, relation) edge updates weight and
// timestamp, never duplicates.
func (g *Graph) UpsertConceptEdge(fromName, toName string, relation core.Relation, weight float64) error {
	fromID, toID := ConceptID(fromName), ConceptID(toName)
	if fromID == "" || toID == "" {
		return core.ValidationErrorf("concept edge endpoints must be non-empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureConcept(fromID, fromName)
	g.ensureConcept(toID, toName)
	g.upsertEdge(fromID, toID, relation, weight)
	return nil
}

// UpsertResourceEdge links a concept to a resource with a resource_for edge,
// creating either endpoint as needed.
func (g *Graph) UpsertResourceEdge(conceptName string, res ResourceNode, weight float64) error {
	conceptID := ConceptID(conceptName)
	if conceptID == "" || res.ID == "" {
		return core.ValidationErrorf("resource edge endpoints must be non-empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureConcept(conceptID, conceptName)
	if _, ok := g.resources[res.ID]; !ok {
		g.resources[res.ID] = res
	}
	g.upsertEdge(conceptID, res.ID, core.RelationResourceFor, weight)
	return nil
}

func (g *Graph) ensureConcept(id, name string) {
	if _, ok := g.concepts[id]; !ok {
		g.concepts[id] = ConceptNode{ID: id, DisplayName: strings.TrimSpace(name)}
	}
}

// upsertEdge assumes both endpoints exist and the lock is held.
func (g *Graph) upsertEdge(fromID, toID string, relation core.Relation, weight float64) {
	key := edgeKey{from: fromID, to: toID, relation: relation}
	if e, ok := g.edges[key]; ok {
		e.weight = weight
		e.updatedAt = time.Now()
		return
	}
	g.seq++
	g.edges[key] = &edge{weight: weight, updatedAt: time.Now(), seq: g.seq}
	g.out[fromID] = append(g.out[fromID], key)
	g.in[toID] = append(g.in[toID], key)
}

// Neighbors returns up to limit nodes adjacent to the named concept,
// ordered by edge weight descending, then insertion order.
func (g *Graph) Neighbors(conceptName string, limit int) []core.GraphNeighbor {
	id := ConceptID(conceptName)

	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := g.sortedOut(id)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]core.GraphNeighbor, 0, len(keys))
	for _, k := range keys {
		out = append(out, core.GraphNeighbor{
			ID:          k.to,
			DisplayName: g.displayName(k.to),
			Relation:    k.relation,
			Weight:      g.edges[k].weight,
		})
	}
	return out
}

// ReviewPath answers "what should I review before studying X": a backward
// traversal over prerequisite_of edges into the concept, bounded by depth.
// Ties break by edge weight descending, then insertion order. Cycles are
// cut by the visited set.
func (g *Graph) ReviewPath(conceptName string, depth int) []ConceptNode {
	id := ConceptID(conceptName)

	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{id: true}
	frontier := []string{id}
	var path []ConceptNode

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, nodeID := range frontier {
			for _, k := range g.sortedIn(nodeID) {
				if k.relation != core.RelationPrerequisiteOf || visited[k.from] {
					continue
				}
				visited[k.from] = true
				if c, ok := g.concepts[k.from]; ok {
					path = append(path, c)
				}
				next = append(next, k.from)
			}
		}
		frontier = next
	}
	return path
}

// Resources returns resources recommended for a concept via resource_for
// edges, ordered by weight descending then insertion order.
func (g *Graph) Resources(conceptName string) []ResourceNode {
	id := ConceptID(conceptName)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []ResourceNode
	for _, k := range g.sortedOut(id) {
		if k.relation != core.RelationResourceFor {
			continue
		}
		if r, ok := g.resources[k.to]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Concept looks up a concept node by name.
func (g *Graph) Concept(name string) (ConceptNode, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.concepts[ConceptID(name)]
	return c, ok
}

// EdgeCount returns the number of distinct (from, to, relation) edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Edge returns the record for one (from, to, relation) key.
func (g *Graph) Edge(fromID, toID string, relation core.Relation) (EdgeRecord, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[edgeKey{from: fromID, to: toID, relation: relation}]
	if !ok {
		return EdgeRecord{}, false
	}
	return EdgeRecord{FromID: fromID, ToID: toID, Relation: relation, Weight: e.weight, UpdatedAt: e.updatedAt}, true
}

// Export dumps all nodes and edges for persistence. Edges come out in
// insertion order so a restore rebuilds identical tie-break behavior.
func (g *Graph) Export() ([]ConceptNode, []ResourceNode, []EdgeRecord) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	concepts := make([]ConceptNode, 0, len(g.concepts))
	for _, c := range g.concepts {
		concepts = append(concepts, c)
	}
	sort.Slice(concepts, func(i, j int) bool { return concepts[i].ID < concepts[j].ID })

	resources := make([]ResourceNode, 0, len(g.resources))
	for _, r := range g.resources {
		resources = append(resources, r)
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })

	keys := make([]edgeKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return g.edges[keys[i]].seq < g.edges[keys[j]].seq })

	edges := make([]EdgeRecord, 0, len(keys))
	for _, k := range keys {
		e := g.edges[k]
		edges = append(edges, EdgeRecord{FromID: k.from, ToID: k.to, Relation: k.relation, Weight: e.weight, UpdatedAt: e.updatedAt})
	}
	return concepts, resources, edges
}

// Restore loads nodes and edges produced by Export into an empty graph.
func (g *Graph) Restore(concepts []ConceptNode, resources []ResourceNode, edges []EdgeRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range concepts {
		g.concepts[c.ID] = c
	}
	for _, r := range resources {
		g.resources[r.ID] = r
	}
	for _, e := range edges {
		g.upsertEdge(e.FromID, e.ToID, e.Relation, e.Weight)
	}
}

func (g *Graph) displayName(id string) string {
	if c, ok := g.concepts[id]; ok {
		return c.DisplayName
	}
	if r, ok := g.resources[id]; ok {
		return r.Reference
	}
	return id
}

// sortedOut returns outgoing edge keys by weight desc, then insertion order.
// Lock must be held.
func (g *Graph) sortedOut(id string) []edgeKey {
	return g.sorted(g.out[id])
}

func (g *Graph) sortedIn(id string) []edgeKey {
	return g.sorted(g.in[id])
}

func (g *Graph) sorted(keys []edgeKey) []edgeKey {
	out := make([]edgeKey, len(keys))
	copy(out, keys)
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := g.edges[out[i]], g.edges[out[j]]
		if ei.weight != ej.weight {
			return ei.weight > ej.weight
		}
		return ei.seq < ej.seq
	})
	return out
}
