package mapper

import (
	"encoding/json"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/model"

	"gorm.io/datatypes"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

type citationJSON struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

func (m *TurnMapper) ToEntity(t *model.AgentTurn) *entity.Turn {
	if t == nil {
		return nil
	}

	var tables []string
	if len(t.RelevantTables) > 0 {
		_ = json.Unmarshal(t.RelevantTables, &tables)
	}

	var raw []citationJSON
	if len(t.Citations) > 0 {
		_ = json.Unmarshal(t.Citations, &raw)
	}
	var citations []entity.Citation
	for _, c := range raw {
		citations = append(citations, entity.Citation{Source: c.Source, Excerpt: c.Excerpt})
	}

	return &entity.Turn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Question:       t.Question,
		Route:          t.Route,
		RelevantTables: tables,
		Query:          t.Query,
		Result:         t.Result,
		Answer:         t.Answer,
		Citations:      citations,
		Error:          t.Error,
		DurationMs:     t.DurationMs,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *TurnMapper) ToModel(t *entity.Turn) *model.AgentTurn {
	if t == nil {
		return nil
	}

	tables := t.RelevantTables
	if tables == nil {
		tables = []string{}
	}
	tablesJSON, _ := json.Marshal(tables)

	raw := make([]citationJSON, len(t.Citations))
	for i, c := range t.Citations {
		raw[i] = citationJSON{Source: c.Source, Excerpt: c.Excerpt}
	}
	citationsJSON, _ := json.Marshal(raw)

	return &model.AgentTurn{
		Id:             t.Id,
		SessionId:      t.SessionId,
		Question:       t.Question,
		Route:          t.Route,
		RelevantTables: datatypes.JSON(tablesJSON),
		Query:          t.Query,
		Result:         t.Result,
		Answer:         t.Answer,
		Citations:      datatypes.JSON(citationsJSON),
		Error:          t.Error,
		DurationMs:     t.DurationMs,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *TurnMapper) ToEntities(turns []*model.AgentTurn) []*entity.Turn {
	entities := make([]*entity.Turn, len(turns))
	for i, t := range turns {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
