package semantic

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const hashDimensions = 384

// HashEmbedder is a deterministic, dependency-free embedder: each token is
// hashed into a pseudo-random unit direction and the directions are summed.
// Texts sharing words land near each other, which is enough for local
// development and tests. Production deployments swap in a model-backed
// Embedder.
type HashEmbedder struct{}

// NewHashEmbedder creates a deterministic token-hash embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// Dimensions returns the embedding width.
func (e *HashEmbedder) Dimensions() int {
	return hashDimensions
}

// Embed returns the normalized sum of per-token hash vectors.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, hashDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?:;\"'()")
		if token == "" {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(token))
		seed := h.Sum64()
		for i := range embedding {
			seed = seed*6364136223846793005 + 1442695040888963407
			// Map the high bits to [-1, 1].
			embedding[i] += float32(int32(seed>>32)) / float32(math.MaxInt32)
		}
	}
	normalize(embedding)
	return embedding, nil
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
