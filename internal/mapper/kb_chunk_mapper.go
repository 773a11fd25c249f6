package mapper

import (
	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type KBChunkMapper struct{}

func NewKBChunkMapper() *KBChunkMapper {
	return &KBChunkMapper{}
}

func (m *KBChunkMapper) ToEntity(c *model.KBChunk) *entity.KBChunk {
	if c == nil {
		return nil
	}
	return &entity.KBChunk{
		Id:             c.Id,
		Source:         c.Source,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *KBChunkMapper) ToModel(c *entity.KBChunk) *model.KBChunk {
	if c == nil {
		return nil
	}
	return &model.KBChunk{
		Id:             c.Id,
		Source:         c.Source,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *KBChunkMapper) ToModels(chunks []*entity.KBChunk) []*model.KBChunk {
	models := make([]*model.KBChunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
