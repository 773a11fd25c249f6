package websocket

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192

	// questions a socket may queue behind the turn in flight
	questionBacklog = 4
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	SessionID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte

	// ctx lives as long as the peer; turns started from this socket use it.
	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(hub *Hub, conn *websocket.Conn, sessionID uuid.UUID) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{Hub: hub, Conn: conn, SessionID: sessionID, Send: make(chan []byte, 256), ctx: ctx, cancel: cancel}
}

// Context is cancelled once the peer has gone.
func (c *Client) Context() context.Context {
	return c.ctx
}

// isExit reports whether a message ends the conversation.
func isExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit":
		return true
	}
	return false
}

// run reads from the socket while a separate goroutine answers the queued
// questions one at a time. When the peer leaves, the turn in flight is
// cancelled and the client is detached only after it has returned, so
// nothing writes to a closed Send.
func (c *Client) run(handle func(c *Client, question string)) {
	questions := make(chan string, questionBacklog)
	answered := make(chan struct{})
	go func() {
		c.answer(questions, handle)
		close(answered)
	}()

	c.readPump(questions)
	c.cancel()
	close(questions)
	<-answered
	c.Hub.unregister <- c
}

// answer handles questions until the queue closes. Questions still queued
// after the peer left are dropped.
func (c *Client) answer(questions <-chan string, handle func(c *Client, question string)) {
	for q := range questions {
		if c.ctx.Err() != nil {
			continue
		}
		handle(c, q)
	}
}

// readPump queues questions until the peer leaves or sends exit/quit.
func (c *Client) readPump(questions chan<- string) {
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"session_id": c.SessionID.String(),
					"error":      err.Error(),
				})
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text := string(data)
		if isExit(text) {
			c.Send <- encode(outbound{Type: TypeBye})
			return
		}
		select {
		case questions <- text:
		default:
			c.Send <- encode(outbound{Type: TypeError, Code: fiber.StatusTooManyRequests, Message: "too many questions waiting"})
		}
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one JSON document per frame
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
