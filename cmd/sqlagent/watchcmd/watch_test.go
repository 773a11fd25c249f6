package watchcmd

import (
	"bytes"
	"testing"
	"time"

	"ai-sqlagent-be/pkg/events"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrintTurn(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	printTurn(&out, events.BaseEvent{
		Type: "agent.turn.completed",
		Data: map[string]interface{}{
			"question":    "How many orders?",
			"route":       "sql",
			"duration_ms": float64(12),
			"query":       "SELECT COUNT(*) FROM orders",
			"answer":      "There are 4 orders.",
		},
		OccurredAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC),
	})

	assert.Equal(t, "[09:30:00] How many orders? (sql, 12ms)\n  SQL: SELECT COUNT(*) FROM orders\n  There are 4 orders.\n", out.String())
}

func TestPrintTurn_Error(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	printTurn(&out, events.BaseEvent{Data: map[string]interface{}{
		"question": "q",
		"route":    "",
		"error":    "route: boom",
	}, OccurredAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)})

	assert.Contains(t, out.String(), "  error: route: boom\n")
	assert.NotContains(t, out.String(), "SQL:")
}
