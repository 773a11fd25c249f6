package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnCompleted_Subject(t *testing.T) {
	assert.Equal(t, TypeTurnCompleted, TurnCompleted{}.EventType())
	assert.Equal(t, "custom.subject", TurnCompleted{Subject: "custom.subject"}.EventType())
}

func TestTurnCompleted_PayloadDecodesBack(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := TurnCompleted{
		TurnID:         "t-1",
		SessionID:      "s-1",
		Question:       "How many orders?",
		Route:          "sql",
		RelevantTables: []string{"orders"},
		Query:          "SELECT COUNT(*) FROM orders",
		Result:         `[{"count":4}]`,
		Answer:         "4",
		Citations:      []Citation{{Source: "a.md", Excerpt: "x"}},
		DurationMs:     12,
		OccurredAt:     at,
	}

	data, err := json.Marshal(event.Payload())
	require.NoError(t, err)

	var decoded TurnCompleted
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.TurnID, decoded.TurnID)
	assert.Equal(t, event.RelevantTables, decoded.RelevantTables)
	assert.Equal(t, event.Citations, decoded.Citations)
	assert.True(t, at.Equal(decoded.OccurredAt))
	assert.Equal(t, at, decoded.Timestamp().UTC())
}

func TestPayloadString(t *testing.T) {
	event := BaseEvent{Data: map[string]interface{}{
		"question":    "q",
		"duration_ms": float64(12),
		"error":       nil,
	}}

	assert.Equal(t, "q", PayloadString(event, "question"))
	assert.Equal(t, "12", PayloadString(event, "duration_ms"))
	assert.Equal(t, "", PayloadString(event, "error"))
	assert.Equal(t, "", PayloadString(event, "missing"))
}
