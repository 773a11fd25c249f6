package pipeline

import (
	"testing"

	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/agent/retrieval"
	"ai-sqlagent-be/pkg/agent/route"

	"github.com/stretchr/testify/assert"
)

func TestMergeNeverResetsFields(t *testing.T) {
	full := State{
		Question:       "q",
		Query:          "SELECT 1",
		Result:         "[]",
		Answer:         "a",
		History:        history.New("User: q", "SQL: SELECT 1"),
		RelevantTables: []string{"orders"},
		Route:          route.RouteSQL,
		Citations:      []retrieval.Citation{{Source: "s", Excerpt: "e"}},
	}

	merged := full.merge(State{})
	assert.Equal(t, full, merged)

	shorter := full.merge(State{History: history.New("User: q")})
	assert.Equal(t, full.History.Entries(), shorter.History.Entries())
}

func TestMergeTakesNewValues(t *testing.T) {
	base := State{Question: "q", History: history.New("User: q")}
	merged := base.merge(State{Query: "SELECT 2", History: history.New("User: q", "SQL: SELECT 2")})

	assert.Equal(t, "q", merged.Question)
	assert.Equal(t, "SELECT 2", merged.Query)
	assert.Equal(t, 2, merged.History.Len())
	assert.Equal(t, "", base.Query)
}
