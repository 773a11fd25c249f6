package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-sqlagent-be/pkg/llm"
)

func TestChatSendsSchemaAsFormat(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:   "llama3",
			Message: chatMessage{Role: "assistant", Content: `{"query":"SELECT 1"}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	schema := llm.ObjectSchema("query", map[string]*llm.Schema{"query": llm.StringSchema("sql")})

	reply, err := p.Chat(context.Background(),
		[]llm.Message{{Role: "model", Content: "hi"}},
		llm.WithTemperature(0), llm.WithResponseSchema(schema))
	require.NoError(t, err)
	assert.Equal(t, `{"query":"SELECT 1"}`, reply)

	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, DefaultKeepAlive, got["keep_alive"])
	assert.Contains(t, got, "format")
	options := got["options"].(map[string]interface{})
	assert.Equal(t, float64(0), options["temperature"])
	messages := got["messages"].([]interface{})
	assert.Equal(t, "assistant", messages[0].(map[string]interface{})["role"])
}

func TestChatSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestChatSurfacesModelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Error: "out of memory"})
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}
