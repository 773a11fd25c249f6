package contract

import (
	"context"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/repository/specification"
)

// ScoredKBChunk wraps a chunk with its cosine similarity to the query.
type ScoredKBChunk struct {
	Chunk      *entity.KBChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KBChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error
	Delete(ctx context.Context, specs ...specification.Specification) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredKBChunk, error)
}
