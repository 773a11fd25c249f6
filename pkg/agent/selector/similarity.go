package selector

import (
	"context"
	"fmt"

	"ai-sqlagent-be/pkg/catalog"
	"ai-sqlagent-be/pkg/embedding"
	"ai-sqlagent-be/pkg/vectorindex"
)

// Similarity ranks tables by embedding distance between the question and
// each table's "name: comment" text.
type Similarity struct {
	embedder embedding.EmbeddingProvider
	index    vectorindex.Index
}

// NewSimilarity embeds every table of cat once, in catalog order.
func NewSimilarity(ctx context.Context, cat *catalog.Catalog, embedder embedding.EmbeddingProvider, index vectorindex.Index) (*Similarity, error) {
	if cat == nil {
		return nil, catalog.ErrEmptyCatalog
	}
	if embedder == nil || index == nil {
		return nil, fmt.Errorf("similarity selector needs an embedder and an index")
	}

	for _, t := range cat.Tables() {
		vec, err := embedder.Embed(ctx, catalog.Describe(t), embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("embed table %s: %w", t.Name, err)
		}
		if err := index.Add(ctx, t.Name, vec); err != nil {
			return nil, fmt.Errorf("index table %s: %w", t.Name, err)
		}
	}
	return &Similarity{embedder: embedder, index: index}, nil
}

func (s *Similarity) Select(ctx context.Context, question string, cat *catalog.Catalog, topK int) ([]string, error) {
	topK = clamp(topK)

	vec, err := s.embedder.Embed(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits, err := s.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search tables: %w", err)
	}

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if cat == nil || cat.Has(h.Key) {
			names = append(names, h.Key)
		}
	}
	return names, nil
}
