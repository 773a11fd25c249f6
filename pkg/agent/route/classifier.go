// Package route decides whether a question is answered from the database or
// from the knowledge base.
package route

import (
	"context"
	"errors"
	"fmt"

	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/llm"
)

type Route string

const (
	RouteSQL Route = "sql"
	RouteRAG Route = "rag"
)

var ErrInvalidRoute = errors.New("model returned an unknown route")

func (r Route) Valid() bool {
	return r == RouteSQL || r == RouteRAG
}

const systemPrompt = `You route questions for a data assistant.
Answer "sql" when the question can be answered by querying the database tables listed below.
Answer "rag" when it needs documents from the knowledge base instead (policies, explanations, how-tos, anything the tables do not hold).
Use the conversation so far to resolve follow-up questions.

Available tables:
%s`

var schema = llm.ObjectSchema("route", map[string]*llm.Schema{
	"route": llm.StringSchema("Where to answer the question from.", string(RouteSQL), string(RouteRAG)),
})

type output struct {
	Route Route `json:"route"`
}

type Classifier struct {
	llm           llm.LLMProvider
	historyWindow int
}

// NewClassifier conditions each decision on the trailing historyWindow
// entries (0 keeps all).
func NewClassifier(provider llm.LLMProvider, historyWindow int) *Classifier {
	return &Classifier{llm: provider, historyWindow: historyWindow}
}

// Classify returns exactly one of RouteSQL or RouteRAG, or an error.
func (c *Classifier) Classify(ctx context.Context, question, summary string, hist history.History) (Route, error) {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: fmt.Sprintf(systemPrompt, summary)}}
	messages = append(messages, hist.Window(c.historyWindow).Messages()...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "Question: " + question})

	var out output
	if err := llm.Decode(ctx, c.llm, messages, schema, &out); err != nil {
		if errors.Is(err, llm.ErrSchemaMismatch) {
			return "", fmt.Errorf("%w: %v", ErrInvalidRoute, err)
		}
		return "", fmt.Errorf("classify route: %w", err)
	}
	if !out.Route.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoute, out.Route)
	}
	return out.Route, nil
}
