package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-sqlagent-be/pkg/embedding"
)

const (
	defaultEndpoint = "https://api.jina.ai/v1/embeddings"
	defaultModel    = "jina-embeddings-v2-base-en"
)

type JinaProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	Task  string   `json:"task,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// NewJinaProvider uses jina-embeddings-v2-base-en when model is empty.
func NewJinaProvider(apiKey, model string) *JinaProvider {
	if model == "" {
		model = defaultModel
	}
	return &JinaProvider{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// taskFor maps the task hint onto Jina's retrieval adapters. Only v3
// models accept the field.
func (p *JinaProvider) taskFor(task embedding.TaskType) string {
	if !strings.Contains(p.model, "v3") {
		return ""
	}
	switch task {
	case embedding.TaskRetrievalQuery:
		return "retrieval.query"
	case embedding.TaskRetrievalDocument:
		return "retrieval.passage"
	}
	return ""
}

func (p *JinaProvider) Embed(ctx context.Context, text string, task embedding.TaskType) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{
		Model: p.model,
		Input: []string{text},
		Task:  p.taskFor(task),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal jina request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create jina request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jina request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jina response: %w", err)
	}

	var out embeddingResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(raw, &out) == nil && out.Detail != "" {
			return nil, fmt.Errorf("jina api error (status %d): %s", resp.StatusCode, out.Detail)
		}
		return nil, fmt.Errorf("jina api error (status %d): %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode jina response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embeddings from jina api")
	}
	return embedding.Normalize(out.Data[0].Embedding), nil
}
