package events

import (
	"fmt"
	"time"
)

// Event is anything published on the agent's event subjects.
type Event interface {
	// EventType returns the subject the event is published under.
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent carries an event received off the wire, where only the decoded
// payload is known.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// PayloadString returns the payload value under key as text, or "" when it
// is missing.
func PayloadString(e Event, key string) string {
	v, ok := e.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
