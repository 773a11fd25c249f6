// Package vectorindex stores fixed-dimension vectors keyed by name and
// answers nearest-neighbour queries.
package vectorindex

import (
	"context"
	"errors"
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type Hit struct {
	Key   string
	Score float64
}

// Index returns hits ordered by descending similarity; equal scores keep
// insertion order.
type Index interface {
	Add(ctx context.Context, key string, vector []float32) error
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Len() int
}

// Keys flattens hits to their keys.
func Keys(hits []Hit) []string {
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = h.Key
	}
	return keys
}
