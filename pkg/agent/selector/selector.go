// Package selector narrows a catalog to the tables most likely to answer a
// question.
package selector

import (
	"context"
	"errors"
	"fmt"

	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/catalog"
	"ai-sqlagent-be/pkg/embedding"
	"ai-sqlagent-be/pkg/llm"
	"ai-sqlagent-be/pkg/vectorindex"
)

// DefaultTopK applies when a caller passes topK <= 0.
const DefaultTopK = 5

var ErrUnknownStrategy = errors.New("unknown selector strategy")

type Kind string

const (
	KindSimilarity Kind = "similarity"
	KindRanking    Kind = "ranking"
)

// Selector returns at most topK table names of cat, most relevant first.
type Selector interface {
	Select(ctx context.Context, question string, cat *catalog.Catalog, topK int) ([]string, error)
}

// Deps carries what either strategy may need. Similarity needs Embedder and
// Index; Ranking needs LLM.
type Deps struct {
	Catalog  *catalog.Catalog
	Embedder embedding.EmbeddingProvider
	Index    vectorindex.Index
	LLM      llm.LLMProvider
	Logger   logger.ILogger
}

// New builds the strategy named by kind. The similarity index is populated
// here, so an embedding failure surfaces at startup.
func New(ctx context.Context, kind Kind, deps Deps) (Selector, error) {
	switch kind {
	case KindSimilarity:
		if deps.Index == nil {
			deps.Index = vectorindex.NewMemory()
		}
		return NewSimilarity(ctx, deps.Catalog, deps.Embedder, deps.Index)
	case KindRanking:
		return NewRanking(deps.LLM, deps.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}

func clamp(topK int) int {
	if topK <= 0 {
		return DefaultTopK
	}
	return topK
}
