package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/repository/contract"
	"ai-sqlagent-be/internal/repository/specification"
	"ai-sqlagent-be/pkg/agent/history"
	"ai-sqlagent-be/pkg/agent/pipeline"
	"ai-sqlagent-be/pkg/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAgentService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	Ask(ctx context.Context, sessionId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.HistoryResponse, error)
	GetTurns(ctx context.Context, sessionId uuid.UUID, limit, offset int) ([]*dto.TurnResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	GetCatalog(ctx context.Context) *dto.CatalogResponse
}

// AgentRunner is satisfied by *pipeline.Orchestrator.
type AgentRunner interface {
	Run(ctx context.Context, question string, hist history.History) (pipeline.State, error)
	Catalog() *catalog.Catalog
}

type agentService struct {
	runner     AgentRunner
	sessions   contract.SessionHistoryStore
	turnRepo   contract.TurnRepository
	publisher  IPublisherService
	logger     logger.ILogger
	maxEntries int

	// one turn at a time per session; turns of different sessions run in parallel
	locks sync.Map
}

func NewAgentService(
	runner AgentRunner,
	sessions contract.SessionHistoryStore,
	turnRepo contract.TurnRepository,
	publisher IPublisherService,
	log logger.ILogger,
	maxEntries int,
) IAgentService {
	return &agentService{
		runner:     runner,
		sessions:   sessions,
		turnRepo:   turnRepo,
		publisher:  publisher,
		logger:     log,
		maxEntries: maxEntries,
	}
}

func (s *agentService) lock(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *agentService) loadSession(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, contract.ErrSessionNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *agentService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	now := time.Now()
	session := &entity.Session{
		Id:        uuid.New(),
		History:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("AGENT", "Session created", map[string]interface{}{"session_id": session.Id.String()})
	return &dto.CreateSessionResponse{Id: session.Id, CreatedAt: session.CreatedAt}, nil
}

// Ask runs one turn. A failed turn leaves the session history untouched and
// surfaces as 502 with the failing stage in the message.
func (s *agentService) Ask(ctx context.Context, sessionId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error) {
	unlock := s.lock(sessionId)
	defer unlock()

	session, err := s.loadSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	state, runErr := s.runner.Run(ctx, request.Question, history.New(session.History...))
	duration := time.Since(started).Milliseconds()

	turn := &dto.PublishTurnMessage{
		TurnId:         uuid.New(),
		SessionId:      sessionId,
		Question:       request.Question,
		Route:          string(state.Route),
		RelevantTables: state.RelevantTables,
		Query:          state.Query,
		Result:         state.Result,
		Answer:         state.Answer,
		Citations:      citationDTOs(state),
		DurationMs:     duration,
		CreatedAt:      started,
	}
	if runErr != nil {
		turn.Error = runErr.Error()
	}
	s.publishTurn(ctx, turn)

	if runErr != nil {
		var stageErr *pipeline.StageError
		if errors.As(runErr, &stageErr) {
			return nil, fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("turn failed at %s: %v", stageErr.Stage, stageErr.Err))
		}
		return nil, fiber.NewError(fiber.StatusBadGateway, runErr.Error())
	}

	session.History = state.History.Window(s.maxEntries).Entries()
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		SessionId:      sessionId,
		TurnId:         turn.TurnId,
		Route:          turn.Route,
		Answer:         state.Answer,
		RelevantTables: state.RelevantTables,
		Query:          state.Query,
		Result:         state.Result,
		Citations:      turn.Citations,
		DurationMs:     duration,
	}, nil
}

func (s *agentService) publishTurn(ctx context.Context, turn *dto.PublishTurnMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, turn); err != nil {
		s.logger.Warn("AGENT", "Failed to publish turn", map[string]interface{}{
			"turn_id": turn.TurnId.String(),
			"error":   err.Error(),
		})
	}
}

func citationDTOs(state pipeline.State) []dto.CitationDTO {
	if len(state.Citations) == 0 {
		return nil
	}
	out := make([]dto.CitationDTO, len(state.Citations))
	for i, c := range state.Citations {
		out[i] = dto.CitationDTO{Source: c.Source, Excerpt: c.Excerpt}
	}
	return out
}

func (s *agentService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.HistoryResponse, error) {
	session, err := s.loadSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	entries := session.History
	if entries == nil {
		entries = []string{}
	}
	return &dto.HistoryResponse{SessionId: session.Id, Entries: entries}, nil
}

func (s *agentService) GetTurns(ctx context.Context, sessionId uuid.UUID, limit, offset int) ([]*dto.TurnResponse, error) {
	if s.turnRepo == nil {
		return nil, fiber.NewError(fiber.StatusNotImplemented, "turn log is not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	turns, err := s.turnRepo.FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		citations := make([]dto.CitationDTO, len(t.Citations))
		for i, c := range t.Citations {
			citations[i] = dto.CitationDTO{Source: c.Source, Excerpt: c.Excerpt}
		}
		res = append(res, &dto.TurnResponse{
			Id:             t.Id,
			Question:       t.Question,
			Route:          t.Route,
			RelevantTables: t.RelevantTables,
			Query:          t.Query,
			Answer:         t.Answer,
			Citations:      citations,
			Error:          t.Error,
			DurationMs:     t.DurationMs,
			CreatedAt:      t.CreatedAt,
		})
	}
	return res, nil
}

func (s *agentService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	unlock := s.lock(sessionId)
	defer unlock()

	if _, err := s.loadSession(ctx, sessionId); err != nil {
		return err
	}
	// The lock entry stays: turns already waiting on it must keep excluding
	// any turn that arrives later.
	return s.sessions.Delete(ctx, sessionId)
}

func (s *agentService) GetCatalog(ctx context.Context) *dto.CatalogResponse {
	cat := s.runner.Catalog()
	tables := make([]dto.TableDTO, 0, cat.Len())
	for _, t := range cat.Tables() {
		cols := []dto.ColumnDTO{}
		for _, c := range cat.ColumnsFor([]string{t.Name}) {
			cols = append(cols, dto.ColumnDTO{Name: c.Name, DataType: c.DataType, Comment: c.Comment})
		}
		tables = append(tables, dto.TableDTO{
			Name:     t.Name,
			Comment:  t.Comment,
			External: t.External,
			Columns:  cols,
		})
	}
	return &dto.CatalogResponse{Comment: cat.Comment(), Tables: tables}
}
