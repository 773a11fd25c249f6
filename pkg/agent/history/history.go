// Package history carries the conversational record between pipeline stages.
package history

import (
	"strings"

	"ai-sqlagent-be/pkg/llm"
)

const (
	PrefixUser   = "User: "
	PrefixTables = "Relevant tables: "
	PrefixQuery  = "SQL: "
	PrefixResult = "Result: "
	PrefixAnswer = "Answer: "
	PrefixError  = "Error: "
)

// History is an append-only sequence of text entries. The zero value is an
// empty history. Values are safe to share: Append never writes into a
// backing array another holder can see.
type History struct {
	entries []string
}

func New(entries ...string) History {
	return History{entries: append([]string(nil), entries...)}
}

// Append returns a new history with entries added at the end.
func (h History) Append(entries ...string) History {
	out := make([]string, len(h.entries), len(h.entries)+len(entries))
	copy(out, h.entries)
	return History{entries: append(out, entries...)}
}

func (h History) User(question string) History { return h.Append(PrefixUser + question) }
func (h History) Query(query string) History { return h.Append(PrefixQuery + query) }
func (h History) Result(result string) History { return h.Append(PrefixResult + result) }
func (h History) Answer(answer string) History { return h.Append(PrefixAnswer + answer) }
func (h History) Error(reason string) History { return h.Append(PrefixError + reason) }
func (h History) Tables(names []string) History {
	if len(names) == 0 {
		return h.Append(PrefixTables + "none")
	}
	return h.Append(PrefixTables + strings.Join(names, ", "))
}

func (h History) Entries() []string {
	return append([]string(nil), h.entries...)
}

func (h History) Len() int { return len(h.entries) }

// Window keeps the trailing n entries; n <= 0 keeps everything.
func (h History) Window(n int) History {
	if n <= 0 || len(h.entries) <= n {
		return h
	}
	return New(h.entries[len(h.entries)-n:]...)
}

// Messages renders entries as chat turns: user utterances become user
// messages, every other artifact is attributed to the assistant.
func (h History) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(h.entries))
	for _, e := range h.entries {
		role := llm.RoleAssistant
		if strings.HasPrefix(e, PrefixUser) {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: e})
	}
	return msgs
}

func (h History) String() string {
	return strings.Join(h.entries, "\n")
}
