package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

type entry struct {
	key    string
	vector []float32
	norm   float64
}

// Memory is a brute-force cosine index. Re-adding a key replaces its vector
// but keeps its original position.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	entries []entry
	pos     map[string]int
}

func NewMemory() *Memory {
	return &Memory{pos: make(map[string]int)}
}

func (m *Memory) Add(_ context.Context, key string, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dim == 0 {
		m.dim = len(vector)
	}
	if len(vector) != m.dim {
		return fmt.Errorf("%w: %s has %d, index has %d", ErrDimensionMismatch, key, len(vector), m.dim)
	}

	e := entry{key: key, vector: append([]float32(nil), vector...), norm: norm(vector)}
	if i, ok := m.pos[key]; ok {
		m.entries[i] = e
		return nil
	}
	m.pos[key] = len(m.entries)
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) Search(_ context.Context, query []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	if len(query) != m.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), m.dim)
	}

	qn := norm(query)
	hits := make([]Hit, len(m.entries))
	for i, e := range m.entries {
		hits[i] = Hit{Key: e.key, Score: cosine(query, qn, e.vector, e.norm)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
