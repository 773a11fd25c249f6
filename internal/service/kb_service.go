package service

import (
	"context"
	"fmt"
	"strings"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/repository/contract"
	"ai-sqlagent-be/internal/repository/specification"
	"ai-sqlagent-be/internal/repository/unitofwork"
	"ai-sqlagent-be/pkg/agent/retrieval"
	"ai-sqlagent-be/pkg/embedding"
	"ai-sqlagent-be/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeBaseService interface {
	IngestDocument(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	DeleteDocument(ctx context.Context, source string) error
}

type knowledgeBaseService struct {
	uowFactory   unitofwork.RepositoryFactory
	embedder     embedding.EmbeddingProvider
	chunkSize    int
	chunkOverlap int
	logger       logger.ILogger
}

func NewKnowledgeBaseService(
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.EmbeddingProvider,
	chunkSize, chunkOverlap int,
	log logger.ILogger,
) IKnowledgeBaseService {
	return &knowledgeBaseService{
		uowFactory:   uowFactory,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       log,
	}
}

// IngestDocument replaces every chunk previously stored for the source.
func (s *knowledgeBaseService) IngestDocument(ctx context.Context, request *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	content := strings.TrimSpace(request.Content)
	if content == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "content is empty")
	}

	pieces := utils.SplitText(content, s.chunkSize, s.chunkOverlap)
	chunks := make([]*entity.KBChunk, 0, len(pieces))
	for i, piece := range pieces {
		vec, err := s.embedder.Embed(ctx, piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, request.Source, err)
		}
		chunks = append(chunks, &entity.KBChunk{
			Id:             uuid.New(),
			Source:         request.Source,
			ChunkIndex:     i,
			Content:        piece,
			EmbeddingValue: embedding.Normalize(vec),
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.KBChunkRepository()
	if err := repo.Delete(ctx, specification.BySource{Source: request.Source}); err != nil {
		return nil, err
	}
	if err := repo.CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("KB", "Document ingested", map[string]interface{}{
		"source": request.Source,
		"chunks": len(chunks),
	})
	return &dto.IngestDocumentResponse{Source: request.Source, Chunks: len(chunks)}, nil
}

func (s *knowledgeBaseService) DeleteDocument(ctx context.Context, source string) error {
	repo := s.uowFactory.NewUnitOfWork(ctx).KBChunkRepository()
	count, err := repo.Count(ctx, specification.BySource{Source: source})
	if err != nil {
		return err
	}
	if count == 0 {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	return repo.Delete(ctx, specification.BySource{Source: source})
}

// kbChunkStore exposes the chunk repository as a retrieval.ChunkStore.
type kbChunkStore struct {
	repo contract.KBChunkRepository
}

func NewKnowledgeStore(repo contract.KBChunkRepository) retrieval.ChunkStore {
	return &kbChunkStore{repo: repo}
}

func (s *kbChunkStore) SearchChunks(ctx context.Context, vector []float32, limit int) ([]retrieval.Chunk, error) {
	scored, err := s.repo.SearchSimilarWithScore(ctx, embedding.Normalize(vector), limit)
	if err != nil {
		return nil, err
	}
	out := make([]retrieval.Chunk, 0, len(scored))
	for _, sc := range scored {
		out = append(out, retrieval.Chunk{
			Source:     sc.Chunk.Source,
			ChunkIndex: sc.Chunk.ChunkIndex,
			Content:    sc.Chunk.Content,
			Similarity: sc.Similarity,
		})
	}
	return out, nil
}
