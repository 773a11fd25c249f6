package mapper

import (
	"testing"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTurnMapperKeepsListsAndCitations(t *testing.T) {
	m := NewTurnMapper()
	turn := &entity.Turn{
		Id:             uuid.New(),
		SessionId:      uuid.New(),
		Question:       "refunds?",
		Route:          "rag",
		RelevantTables: []string{"orders"},
		Citations:      []entity.Citation{{Source: "policy.md", Excerpt: "5 days"}},
		Answer:         "Five days.",
	}

	back := m.ToEntity(m.ToModel(turn))
	assert.Equal(t, turn.RelevantTables, back.RelevantTables)
	assert.Equal(t, turn.Citations, back.Citations)
	assert.Equal(t, turn.Answer, back.Answer)
}

func TestTurnMapperEmptyLists(t *testing.T) {
	m := NewTurnMapper()
	mod := m.ToModel(&entity.Turn{Id: uuid.New()})
	assert.JSONEq(t, `[]`, string(mod.RelevantTables))
	assert.JSONEq(t, `[]`, string(mod.Citations))

	assert.Nil(t, m.ToEntity((*model.AgentTurn)(nil)))
}
