package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-sqlagent-be/pkg/embedding/embeddingtest"
	"ai-sqlagent-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, NoAnswerFound, Normalize(nil).Answer)
	assert.Equal(t, NoAnswerFound, Normalize(&Result{Answer: "  "}).Answer)

	long := strings.Repeat("é", 250)
	r := Normalize(&Result{Answer: "yes", Citations: []Citation{{Source: "s3://kb/a.md", Excerpt: long}}})
	assert.Equal(t, "yes", r.Answer)
	require.Len(t, r.Citations, 1)
	assert.Equal(t, strings.Repeat("é", 200)+"...", r.Citations[0].Excerpt)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt(" short "))
	exact := strings.Repeat("a", 200)
	assert.Equal(t, exact, Excerpt(exact))

	cut := Excerpt(strings.Repeat("b", 201))
	assert.Equal(t, strings.Repeat("b", 200)+"...", cut)
	assert.Equal(t, cut, Excerpt(cut))
}

func TestFormatCitations(t *testing.T) {
	citations := []Citation{
		{Source: "handbook.md", Excerpt: "Refunds take 5 days."},
		{Source: "faq.md", Excerpt: "Contact support."},
	}
	assert.Equal(t, "[1] handbook.md: Refunds take 5 days.\n[2] faq.md: Contact support.", FormatCitations(citations))
	assert.Equal(t, "", FormatCitations(nil))

	assert.Equal(t, "Five days.\n\nSources:\n[1] handbook.md: Refunds take 5 days.\n[2] faq.md: Contact support.",
		WithCitations("Five days.", citations))
	assert.Equal(t, "Five days.", WithCitations("Five days.", nil))
}

type fakeStore struct {
	chunks []Chunk
	err    error
	limit  int
}

func (f *fakeStore) SearchChunks(_ context.Context, _ []float32, limit int) ([]Chunk, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

func TestKnowledgeBaseAnswersWithCitations(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{
		{Source: "refunds.md", Content: "Refunds are processed within 5 business days.", Similarity: 0.9},
		{Source: "noise.md", Content: "Unrelated.", Similarity: 0.1},
	}}
	provider := llmtest.NewProvider("Refunds take five business days.")
	kb := NewKnowledgeBase(embeddingtest.NewVocabulary("refunds"), store, provider, KnowledgeBaseConfig{MinSimilarity: 0.5}, nil)

	res, err := kb.RetrieveAndAnswer(context.Background(), "how long do refunds take?")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, store.limit)
	assert.Equal(t, "Refunds take five business days.", res.Answer)
	assert.Equal(t, []Citation{{Source: "refunds.md", Excerpt: "Refunds are processed within 5 business days."}}, res.Citations)
	assert.Contains(t, provider.LastPrompt(), "(refunds.md)")
	assert.NotContains(t, provider.LastPrompt(), "Unrelated.")
}

func TestKnowledgeBaseNothingFound(t *testing.T) {
	provider := llmtest.NewProvider()
	kb := NewKnowledgeBase(embeddingtest.NewVocabulary("x"), &fakeStore{}, provider, KnowledgeBaseConfig{}, nil)

	res, err := kb.RetrieveAndAnswer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFound, res.Answer)
	assert.Empty(t, res.Citations)
	assert.Empty(t, provider.Calls())
}

func TestKnowledgeBaseEmptyModelAnswer(t *testing.T) {
	store := &fakeStore{chunks: []Chunk{{Source: "a.md", Content: "text", Similarity: 1}}}
	kb := NewKnowledgeBase(embeddingtest.NewVocabulary("x"), store, llmtest.NewProvider(`""`), KnowledgeBaseConfig{}, nil)

	res, err := kb.RetrieveAndAnswer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFound, res.Answer)
	assert.Empty(t, res.Citations)

	res, err = NewKnowledgeBase(embeddingtest.NewVocabulary("x"), store, llmtest.NewProvider("   "), KnowledgeBaseConfig{}, nil).
		RetrieveAndAnswer(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFound, res.Answer)
	assert.Nil(t, res.Citations)
}

func TestKnowledgeBaseFailures(t *testing.T) {
	emb := embeddingtest.NewVocabulary("x")
	emb.Err = errors.New("embedder down")
	_, err := NewKnowledgeBase(emb, &fakeStore{}, llmtest.NewProvider(), KnowledgeBaseConfig{}, nil).RetrieveAndAnswer(context.Background(), "q")
	assert.ErrorContains(t, err, "embedder down")

	store := &fakeStore{err: errors.New("db down")}
	_, err = NewKnowledgeBase(embeddingtest.NewVocabulary("x"), store, llmtest.NewProvider(), KnowledgeBaseConfig{}, nil).RetrieveAndAnswer(context.Background(), "q")
	assert.ErrorContains(t, err, "db down")
}
