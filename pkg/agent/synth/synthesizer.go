// Package synth turns a question and a rendered schema into one query.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/llm"
)

// DefaultRowCap is the row limit asked for when the question names no count.
const DefaultRowCap = 10

var ErrEmptyQuery = errors.New("model returned an empty query")

const systemPrompt = `You are a helpful assistant.
Generate syntactically correct %s queries based on the user's question.
Unless the user specifies in their question a specific number of examples they wish to obtain, always limit your query to at most %d results.
%s
Database has several schemas. Always work on the schema %s.
Pay attention to use only the column names that you can see in the schema description.
Never query for all the columns from a specific table, only ask for a few relevant columns given the question.
Be careful to not query for columns that do not exist. Also, pay attention to which column is in which table.
Only use the following tables:
%s`

var schema = llm.ObjectSchema("query", map[string]*llm.Schema{
	"query": llm.StringSchema("Syntactically valid SQL query."),
})

type output struct {
	Query string `json:"query"`
}

type Synthesizer struct {
	llm           llm.LLMProvider
	historyWindow int
}

func NewSynthesizer(provider llm.LLMProvider, historyWindow int) *Synthesizer {
	return &Synthesizer{llm: provider, historyWindow: historyWindow}
}

// Synthesize returns the query and hist extended with the question and the
// query, in that order.
func (s *Synthesizer) Synthesize(ctx context.Context, question, renderedSchema string, dialect Dialect, hist history.History) (string, history.History, error) {
	system := fmt.Sprintf(systemPrompt, dialect.Platform, DefaultRowCap, dialect.Specifics, dialect.Schema, renderedSchema)

	messages := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	messages = append(messages, hist.Window(s.historyWindow).Messages()...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "Question: " + question})

	var out output
	if err := llm.Decode(ctx, s.llm, messages, schema, &out); err != nil {
		return "", hist, fmt.Errorf("synthesize query: %w", err)
	}
	query := strings.TrimSpace(out.Query)
	if query == "" {
		return "", hist, ErrEmptyQuery
	}
	return query, hist.User(question).Query(query), nil
}
