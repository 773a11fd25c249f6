package service

import (
	"context"
	"encoding/json"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/repository/contract"
	"ai-sqlagent-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventPublisher forwards events to an external bus such as NATS.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// consumerService writes finished turns to the audit log and forwards them
// to the external bus, off the request path.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	turnRepo   contract.TurnRepository
	eventBus   EventPublisher
	subject    string
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	turnRepo contract.TurnRepository,
	eventBus EventPublisher,
	subject string,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		turnRepo:   turnRepo,
		eventBus:   eventBus,
		subject:    subject,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal turn message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.turnRepo != nil {
		if err := cs.turnRepo.Create(ctx, turnFromMessage(&payload)); err != nil {
			cs.logger.Error("CONSUMER", "Failed to persist turn", map[string]interface{}{
				"turn_id": payload.TurnId.String(),
				"error":   err.Error(),
			})
			msg.Nack()
			return
		}
	}

	if cs.eventBus != nil {
		if err := cs.eventBus.Publish(ctx, eventFromMessage(&payload, cs.subject)); err != nil {
			// the turn is already stored; a lost notification is not retried
			cs.logger.Warn("CONSUMER", "Failed to forward turn event", map[string]interface{}{
				"turn_id": payload.TurnId.String(),
				"error":   err.Error(),
			})
		}
	}

	cs.logger.Debug("CONSUMER", "Turn processed", map[string]interface{}{
		"turn_id":    payload.TurnId.String(),
		"session_id": payload.SessionId.String(),
	})
	msg.Ack()
}

func turnFromMessage(m *dto.PublishTurnMessage) *entity.Turn {
	citations := make([]entity.Citation, len(m.Citations))
	for i, c := range m.Citations {
		citations[i] = entity.Citation{Source: c.Source, Excerpt: c.Excerpt}
	}
	return &entity.Turn{
		Id:             m.TurnId,
		SessionId:      m.SessionId,
		Question:       m.Question,
		Route:          m.Route,
		RelevantTables: m.RelevantTables,
		Query:          m.Query,
		Result:         m.Result,
		Answer:         m.Answer,
		Citations:      citations,
		Error:          m.Error,
		DurationMs:     m.DurationMs,
		CreatedAt:      m.CreatedAt,
	}
}

func eventFromMessage(m *dto.PublishTurnMessage, subject string) events.TurnCompleted {
	citations := make([]events.Citation, len(m.Citations))
	for i, c := range m.Citations {
		citations[i] = events.Citation{Source: c.Source, Excerpt: c.Excerpt}
	}
	return events.TurnCompleted{
		Subject:        subject,
		TurnID:         m.TurnId.String(),
		SessionID:      m.SessionId.String(),
		Question:       m.Question,
		Route:          m.Route,
		RelevantTables: m.RelevantTables,
		Query:          m.Query,
		Result:         m.Result,
		Answer:         m.Answer,
		Citations:      citations,
		Error:          m.Error,
		DurationMs:     m.DurationMs,
		OccurredAt:     m.CreatedAt,
	}
}
