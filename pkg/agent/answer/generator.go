// Package answer phrases the final reply from a query result.
package answer

import (
	"context"
	"fmt"
	"strings"

	"ai-sqlagent-be/pkg/agent/executor"
	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/llm"
)

// NoInformationFound is the reply for an empty result.
const NoInformationFound = "No information was found for your question."

const systemPrompt = `You are a helpful AI assistant. Given the user's question and the SQL query result, provide a natural language answer.
If the query result is empty, state that no information was found.
If the result ends with "Result truncated to N rows.", say that only the first N rows were shown and do not present counts or totals over them as complete.
If the result starts with "Query failed:", explain in plain language that the query could not be run and why, without showing raw SQL errors verbatim unless they help the user.`

type Generator struct {
	llm           llm.LLMProvider
	historyWindow int
}

func NewGenerator(provider llm.LLMProvider, historyWindow int) *Generator {
	return &Generator{llm: provider, historyWindow: historyWindow}
}

// Generate returns the answer and hist with exactly one "Answer:" entry added.
func (g *Generator) Generate(ctx context.Context, question, result string, hist history.History) (string, history.History, error) {
	if executor.IsEmpty(result) {
		return NoInformationFound, hist.Answer(NoInformationFound), nil
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	messages = append(messages, hist.Window(g.historyWindow).Messages()...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Question: %s\nSQL Result: %s", question, result),
	})

	reply, err := g.llm.Chat(ctx, messages, llm.WithTemperature(0))
	if err != nil {
		return "", hist, fmt.Errorf("generate answer: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = NoInformationFound
	}
	return reply, hist.Answer(reply), nil
}
