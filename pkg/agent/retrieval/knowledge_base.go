package retrieval

import (
	"context"
	"fmt"
	"strings"

	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/embedding"
	"ai-sqlagent-be/pkg/llm"
)

const DefaultMaxResults = 5

// Chunk is a stored slice of a knowledge-base document.
type Chunk struct {
	Source     string
	ChunkIndex int
	Content    string
	Similarity float64
}

// ChunkStore finds the chunks nearest to a query vector.
type ChunkStore interface {
	SearchChunks(ctx context.Context, vector []float32, limit int) ([]Chunk, error)
}

const answerPrompt = `You answer questions using only the knowledge-base excerpts below.
If the excerpts do not contain the answer, reply with an empty string.
Do not mention the excerpts or their numbering in your answer.

Excerpts:
%s`

// KnowledgeBase is a Retriever over embedded document chunks.
type KnowledgeBase struct {
	embedder      embedding.EmbeddingProvider
	store         ChunkStore
	llm           llm.LLMProvider
	maxResults    int
	minSimilarity float64
	logger        logger.ILogger
}

type KnowledgeBaseConfig struct {
	MaxResults    int
	MinSimilarity float64
}

func NewKnowledgeBase(embedder embedding.EmbeddingProvider, store ChunkStore, provider llm.LLMProvider, cfg KnowledgeBaseConfig, log logger.ILogger) *KnowledgeBase {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &KnowledgeBase{
		embedder:      embedder,
		store:         store,
		llm:           provider,
		maxResults:    cfg.MaxResults,
		minSimilarity: cfg.MinSimilarity,
		logger:        log,
	}
}

func (kb *KnowledgeBase) RetrieveAndAnswer(ctx context.Context, question string) (*Result, error) {
	vec, err := kb.embedder.Embed(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	found, err := kb.store.SearchChunks(ctx, vec, kb.maxResults)
	if err != nil {
		return nil, fmt.Errorf("search knowledge base: %w", err)
	}

	var chunks []Chunk
	for _, c := range found {
		if c.Similarity >= kb.minSimilarity {
			chunks = append(chunks, c)
		}
	}
	kb.logger.Debug("RETRIEVAL", "Knowledge base search", map[string]interface{}{
		"found": len(found),
		"kept":  len(chunks),
	})
	if len(chunks) == 0 {
		return Normalize(nil), nil
	}

	var excerpts strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&excerpts, "[%d] (%s)\n%s\n\n", i+1, c.Source, strings.TrimSpace(c.Content))
	}

	answer, err := kb.llm.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(answerPrompt, excerpts.String())},
		{Role: llm.RoleUser, Content: question},
	}, llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("answer from knowledge base: %w", err)
	}

	answer = strings.TrimSpace(strings.Trim(strings.TrimSpace(answer), `"`))
	if answer == "" {
		// excerpts that did not answer the question are not cited
		return Normalize(nil), nil
	}

	citations := make([]Citation, len(chunks))
	for i, c := range chunks {
		citations[i] = Citation{Source: c.Source, Excerpt: c.Content}
	}
	return Normalize(&Result{Answer: answer, Citations: citations}), nil
}
