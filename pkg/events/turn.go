package events

import "time"

const TypeTurnCompleted = "agent.turn.completed"

type Citation struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// TurnCompleted announces one finished agent turn, successful or not.
type TurnCompleted struct {
	Subject        string     `json:"-"`
	TurnID         string     `json:"turn_id"`
	SessionID      string     `json:"session_id"`
	Question       string     `json:"question"`
	Route          string     `json:"route"`
	RelevantTables []string   `json:"relevant_tables"`
	Query          string     `json:"query"`
	Result         string     `json:"result"`
	Answer         string     `json:"answer"`
	Citations      []Citation `json:"citations"`
	Error          string     `json:"error,omitempty"`
	DurationMs     int64      `json:"duration_ms"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

func (e TurnCompleted) EventType() string {
	if e.Subject != "" {
		return e.Subject
	}
	return TypeTurnCompleted
}

func (e TurnCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"turn_id":         e.TurnID,
		"session_id":      e.SessionID,
		"question":        e.Question,
		"route":           e.Route,
		"relevant_tables": e.RelevantTables,
		"query":           e.Query,
		"result":          e.Result,
		"answer":          e.Answer,
		"citations":       e.Citations,
		"error":           e.Error,
		"duration_ms":     e.DurationMs,
		"occurred_at":     e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e TurnCompleted) Timestamp() time.Time {
	return e.OccurredAt
}
