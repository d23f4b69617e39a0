// Package pipeline generates embeddings for resources. Embeddings feed the
// similarity term of the discovery scoring; the graph works without them,
// the similarity term just stays 0.
package pipeline

import (
	"fmt"
	"hash/fnv"
	"math"
)

// EmbedFunc is a function that generates an embedding vector for text
type EmbedFunc func(text string) ([]float32, error)

// StaticEmbedder returns a deterministic embedder for tests. The vector is
// derived from a hash of the text and normalized to unit length, so equal
// texts are identical and different texts are almost surely not parallel.
func StaticEmbedder(dim int) EmbedFunc {
	return func(text string) ([]float32, error) {
		if dim <= 0 {
			return nil, fmt.Errorf("embedding dimension must be positive")
		}

		embedding := make([]float32, dim)
		norm := float64(0)
		for i := range embedding {
			h := fnv.New32a()
			fmt.Fprintf(h, "%s:%d", text, i)
			v := float64(h.Sum32())/float64(math.MaxUint32) - 0.5
			embedding[i] = float32(v)
			norm += v * v
		}

		norm = math.Sqrt(norm)
		if norm == 0 {
			return embedding, nil
		}
		for i := range embedding {
			embedding[i] /= float32(norm)
		}

		return embedding, nil
	}
}
