package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-sqlagent-be/pkg/llm"
	"ai-sqlagent-be/pkg/llm/llmtest"
)

var routeSchema = llm.ObjectSchema("route", map[string]*llm.Schema{
	"route": llm.StringSchema("where to send the question", "sql", "rag"),
})

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{name: "plain object", response: `{"route":"sql"}`, want: "sql"},
		{name: "object wrapped in prose", response: "Sure!\n```json\n{\"route\": \"rag\"}\n```", want: "rag"},
		{name: "value outside enum", response: `{"route":"both"}`, wantErr: true},
		{name: "missing field", response: `{}`, wantErr: true},
		{name: "extra field", response: `{"route":"sql","why":"x"}`, wantErr: true},
		{name: "no json", response: "sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llmtest.NewProvider(tt.response)

			var out struct {
				Route string `json:"route"`
			}
			err := llm.Decode(context.Background(), provider, []llm.Message{{Role: llm.RoleUser, Content: "q"}}, routeSchema, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Route)
		})
	}
}

func TestDecodePassesSchemaAndZeroTemperature(t *testing.T) {
	provider := llmtest.NewProvider(`{"route":"sql"}`)

	var out map[string]string
	require.NoError(t, llm.Decode(context.Background(), provider, nil, routeSchema, &out))

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Same(t, routeSchema, calls[0].Options.Schema)
	assert.Zero(t, calls[0].Options.Temperature)
}

func TestDecodeNoJSON(t *testing.T) {
	provider := llmtest.NewProvider("I cannot help with that")

	var out map[string]string
	err := llm.Decode(context.Background(), provider, nil, routeSchema, &out)
	assert.True(t, errors.Is(err, llm.ErrNoJSON))
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, llm.ExtractJSON(`x {"a":{"b":1}} y`))
	assert.Equal(t, "", llm.ExtractJSON("} nothing {"))
	assert.Equal(t, "", llm.ExtractJSON(""))
}
