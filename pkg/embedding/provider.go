package embedding

import (
	"context"
	"math"
)

// TaskType hints the provider about how the vector will be used.
// Providers that have no notion of tasks ignore it.
type TaskType string

const (
	TaskRetrievalQuery    TaskType = "RETRIEVAL_QUERY"
	TaskRetrievalDocument TaskType = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)
}

// Normalize scales a vector to unit length (magnitude = 1).
// Cosine distance in pgvector and the in-memory index assume normalized vectors.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
