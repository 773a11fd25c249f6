package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventBus struct {
	mu     sync.Mutex
	events []events.Event
	fail   error
}

func (b *fakeEventBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return b.fail
}

func turnMessage(t *testing.T, payload interface{}) *message.Message {
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), data)
}

func newConsumer(repo *fakeTurnRepo, bus EventPublisher) *consumerService {
	return NewConsumerService(nil, "agent.turns", repo, bus, "agent.turn.completed", logger.NewNopLogger()).(*consumerService)
}

func TestConsumer_PersistsAndForwards(t *testing.T) {
	repo := &fakeTurnRepo{}
	bus := &fakeEventBus{}
	cs := newConsumer(repo, bus)

	turnId := uuid.New()
	msg := turnMessage(t, &dto.PublishTurnMessage{
		TurnId:    turnId,
		SessionId: uuid.New(),
		Question:  "refunds?",
		Route:     "rag",
		Answer:    "30 days",
		Citations: []dto.CitationDTO{{Source: "policy.md", Excerpt: "Refunds within 30 days"}},
		CreatedAt: time.Now(),
	})
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message not acked")
	}
	require.Len(t, repo.created, 1)
	assert.Equal(t, turnId, repo.created[0].Id)
	assert.Equal(t, "policy.md", repo.created[0].Citations[0].Source)

	require.Len(t, bus.events, 1)
	assert.Equal(t, "agent.turn.completed", bus.events[0].EventType())
	assert.Equal(t, turnId.String(), bus.events[0].Payload()["turn_id"])
}

func TestConsumer_NacksWhenStoreFails(t *testing.T) {
	repo := &fakeTurnRepo{fail: errors.New("db down")}
	bus := &fakeEventBus{}
	cs := newConsumer(repo, bus)

	msg := turnMessage(t, &dto.PublishTurnMessage{TurnId: uuid.New()})
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Nacked():
	default:
		t.Fatal("message not nacked")
	}
	assert.Empty(t, bus.events)
}

func TestConsumer_AcksDespiteBusFailure(t *testing.T) {
	repo := &fakeTurnRepo{}
	cs := newConsumer(repo, &fakeEventBus{fail: errors.New("nats down")})

	msg := turnMessage(t, &dto.PublishTurnMessage{TurnId: uuid.New()})
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message not acked")
	}
	assert.Len(t, repo.created, 1)
}

func TestConsumer_AcksMalformedPayload(t *testing.T) {
	repo := &fakeTurnRepo{}
	cs := newConsumer(repo, nil)

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message not acked")
	}
	assert.Empty(t, repo.created)
}
