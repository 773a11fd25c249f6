package implementation

import (
	"context"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/mapper"
	"ai-sqlagent-be/internal/model"
	"ai-sqlagent-be/internal/repository/contract"
	"ai-sqlagent-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KBChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBChunkMapper
}

func NewKBChunkRepository(db *gorm.DB) contract.KBChunkRepository {
	return &KBChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBChunkMapper(),
	}
}

func (r *KBChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KBChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KBChunkRepositoryImpl) Delete(ctx context.Context, specs ...specification.Specification) error {
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	return query.Delete(&model.KBChunk{}).Error
}

func (r *KBChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KBChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore orders by pgvector cosine distance and reports
// 1 - distance as the similarity.
func (r *KBChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredKBChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KBChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("kb_chunks").
		Select("kb_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding_value <=> ?, chunk_index", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKBChunk, len(results))
	for i := range results {
		scored[i] = &contract.ScoredKBChunk{
			Chunk:      r.mapper.ToEntity(&results[i].KBChunk),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
