package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-sqlagent-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel carries session events between API instances.
const clusterChannel = "agent_session_events"

// Hub tracks the sockets attached to each session so every viewer of a
// conversation sees its turns, including viewers on other instances.
type Hub struct {
	// SessionID -> attached clients (several tabs may watch one session)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out; nil runs single-instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type clusterEvent struct {
	SessionID string          `json:"session_id"`
	Origin    string          `json:"origin"`
	Message   json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client attached", map[string]interface{}{"session_id": client.SessionID.String()})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.SessionID]
			for i, c := range clients {
				if c == client {
					h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.SessionID]) == 0 {
				delete(h.clients, client.SessionID)
			}
			h.mu.Unlock()
		}
	}
}

// Viewers reports how many local sockets watch the session.
func (h *Hub) Viewers(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Publish delivers data to every local viewer of the session except the
// sender, then fans it out to the other instances.
func (h *Hub) Publish(ctx context.Context, sessionID uuid.UUID, data []byte, except *Client) {
	h.deliver(sessionID, data, except)

	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(clusterEvent{
		SessionID: sessionID.String(),
		Origin:    h.instanceID,
		Message:   data,
	})
	if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) deliver(sessionID uuid.UUID, data []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		if client == except {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"session_id": sessionID.String()})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event clusterEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if event.Origin == h.instanceID {
			continue
		}
		sessionID, err := uuid.Parse(event.SessionID)
		if err != nil {
			continue
		}
		h.deliver(sessionID, event.Message, nil)
	}
}
