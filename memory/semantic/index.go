// Package semantic provides the optional semantic recall layer: an
// embedded, in-process vector index over memory text, backed by chromem-go.
package semantic

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Index is a chromem-backed implementation of memory.Recaller. Each user
// gets a private collection for namespace isolation.
type Index struct {
	db          *chromem.DB
	embedder    Embedder
	minScore    float32
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// Option configures an Index.
type Option func(*Index)

// WithMinSimilarity sets the similarity floor for recall results.
func WithMinSimilarity(min float32) Option {
	return func(ix *Index) {
		ix.minScore = min
	}
}

// NewIndex creates an empty semantic index.
func NewIndex(embedder Embedder, opts ...Option) *Index {
	ix := &Index{
		db:          chromem.NewDB(),
		embedder:    embedder,
		minScore:    0.3,
		collections: make(map[string]*chromem.Collection),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *Index) collection(userID string) (*chromem.Collection, error) {
	ix.mu.RLock()
	col, ok := ix.collections[userID]
	ix.mu.RUnlock()
	if ok {
		return col, nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if col, ok := ix.collections[userID]; ok {
		return col, nil
	}

	name := "user_" + userID
	col, err := ix.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	ix.collections[userID] = col
	return col, nil
}

// Index embeds and stores one memory snippet for a user.
func (ix *Index) Index(ctx context.Context, userID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	col, err := ix.collection(userID)
	if err != nil {
		return err
	}

	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed snippet: %w", err)
	}

	doc := chromem.Document{
		ID:        uuid.New().String(),
		Content:   text,
		Embedding: embedding,
		Metadata:  map[string]string{"owner_id": userID},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Recall returns up to limit snippets similar to the query, best first.
func (ix *Index) Recall(ctx context.Context, userID, query string, limit int) ([]string, error) {
	col, err := ix.collection(userID)
	if err != nil {
		return nil, err
	}

	embedding, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// chromem rejects nResults larger than the collection, so walk the
	// limit down until a query fits.
	var results []chromem.Result
	for n := limit; n >= 1; n-- {
		results, err = col.QueryEmbedding(ctx, embedding, n, nil, nil)
		if err == nil {
			break
		}
		if !isInsufficientDocsError(err) {
			return nil, fmt.Errorf("query embedding: %w", err)
		}
		if n == 1 {
			return nil, nil // empty collection
		}
	}

	var out []string
	for _, r := range results {
		if r.Similarity < ix.minScore {
			continue
		}
		out = append(out, r.Content)
	}
	log.Printf("[SEMANTIC] Recalled %d/%d snippets for user=%s", len(out), len(results), userID)
	return out, nil
}

func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
