package pipeline

import (
	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/agent/retrieval"
	"ai-sqlagent-be/pkg/agent/route"
)

// State is the value carried through one traversal. Stages never modify a
// State in place; they return an update that merge folds in.
type State struct {
	Question       string               `json:"question"`
	Query          string               `json:"query,omitempty"`
	Result         string               `json:"result,omitempty"`
	Answer         string               `json:"answer"`
	History        history.History      `json:"-"`
	RelevantTables []string             `json:"relevant_tables,omitempty"`
	Route          route.Route          `json:"route"`
	Citations      []retrieval.Citation `json:"citations,omitempty"`
}

// merge takes every field update sets and keeps s's value otherwise, so a
// field once set is never reset to empty. History only ever grows.
func (s State) merge(update State) State {
	out := s
	if update.Question != "" {
		out.Question = update.Question
	}
	if update.Query != "" {
		out.Query = update.Query
	}
	if update.Result != "" {
		out.Result = update.Result
	}
	if update.Answer != "" {
		out.Answer = update.Answer
	}
	if update.History.Len() >= s.History.Len() {
		out.History = update.History
	}
	if len(update.RelevantTables) > 0 {
		out.RelevantTables = append([]string(nil), update.RelevantTables...)
	}
	if update.Route != "" {
		out.Route = update.Route
	}
	if len(update.Citations) > 0 {
		out.Citations = append([]retrieval.Citation(nil), update.Citations...)
	}
	return out
}
