package synth

import (
	"context"
	"errors"
	"testing"

	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/llm"
	"ai-sqlagent-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersSchema = "Table: orders\nDescription: \nColumns:\n- order_id\n- customer_id\n- total\n\n"

func postgres(t *testing.T) Dialect {
	t.Helper()
	d, err := LookupDialect("postgres", "", "")
	require.NoError(t, err)
	return d
}

func TestSynthesizeAppendsQuestionThenQuery(t *testing.T) {
	provider := llmtest.NewProvider(`{"query":"SELECT order_id FROM orders LIMIT 3"}`)
	prior := history.New("User: hello", "Answer: hi")

	query, hist, err := NewSynthesizer(provider, 0).Synthesize(context.Background(), "show me 3 orders", ordersSchema, postgres(t), prior)
	require.NoError(t, err)

	assert.Equal(t, "SELECT order_id FROM orders LIMIT 3", query)
	assert.Equal(t, []string{
		"User: hello",
		"Answer: hi",
		"User: show me 3 orders",
		"SQL: SELECT order_id FROM orders LIMIT 3",
	}, hist.Entries())
	assert.Equal(t, 2, prior.Len())
}

func TestSynthesizePrompt(t *testing.T) {
	provider := llmtest.NewProvider(`{"query":"SELECT TOP (10) total FROM dbo.orders"}`)
	d, err := LookupDialect("MSSQL", "sales", "")
	require.NoError(t, err)

	_, _, err = NewSynthesizer(provider, 1).Synthesize(context.Background(), "totals?", ordersSchema, d, history.New("User: a", "Answer: b"))
	require.NoError(t, err)

	call := provider.Calls()[0]
	system := call.History[0].Content
	assert.Contains(t, system, "Azure SQL Server")
	assert.Contains(t, system, "at most 10 results")
	assert.Contains(t, system, "Never use LIMIT; use TOP (n) instead.")
	assert.Contains(t, system, "schema sales")
	assert.Contains(t, system, ordersSchema)

	require.Len(t, call.History, 3)
	assert.Equal(t, "Answer: b", call.History[1].Content)
	assert.Equal(t, "Question: totals?", call.History[2].Content)
	assert.Equal(t, llm.RoleUser, call.History[2].Role)
	require.NotNil(t, call.Options.Schema)
}

func TestSynthesizeFailures(t *testing.T) {
	prior := history.New("User: earlier")

	tests := []struct {
		name     string
		provider llm.LLMProvider
		wantErr  error
	}{
		{"empty query", llmtest.NewProvider(`{"query":"  "}`), ErrEmptyQuery},
		{"free text", llmtest.NewProvider("SELECT 1"), llm.ErrNoJSON},
		{"model error", llmtest.Failing(errors.New("boom")), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hist, err := NewSynthesizer(tt.provider, 0).Synthesize(context.Background(), "q", ordersSchema, postgres(t), prior)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Equal(t, prior.Entries(), hist.Entries())
		})
	}
}

func TestLookupDialect(t *testing.T) {
	d, err := LookupDialect("redshift", "analytics", "Use LIMIT n.")
	require.NoError(t, err)
	assert.Equal(t, "AWS Redshift", d.Platform)
	assert.Equal(t, "analytics", d.Schema)
	assert.Equal(t, "Use LIMIT n.", d.Specifics)

	d, err = LookupDialect("sqlite", "", "")
	require.NoError(t, err)
	assert.Equal(t, "main", d.Schema)

	_, err = LookupDialect("oracle", "", "")
	assert.Error(t, err)
}
