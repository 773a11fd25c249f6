package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/pkg/serverutils"
	"ai-sqlagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	TypeAnswer = "answer"
	TypeTurn   = "turn"
	TypeError  = "error"
	TypeBye    = "bye"
)

// outbound is every frame the server writes. Answers go to the asker, turns
// to the other viewers of the session.
type outbound struct {
	Type    string           `json:"type"`
	Data    *dto.AskResponse `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Code    int              `json:"code,omitempty"`
}

func encode(o outbound) []byte {
	data, _ := json.Marshal(o)
	return data
}

// inbound accepts either a bare question or {"question": "..."}.
func parseQuestion(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		var req dto.AskRequest
		if err := json.Unmarshal([]byte(trimmed), &req); err == nil {
			return strings.TrimSpace(req.Question)
		}
	}
	return trimmed
}

// ServeWs attaches a client to the hub and pumps until the peer leaves.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID uuid.UUID, handle func(c *Client, question string)) {
	client := newClient(hub, c, sessionID)
	client.Hub.register <- client

	done := make(chan struct{})
	go func() {
		client.writePump()
		close(done)
	}()
	client.run(handle)
	<-done
}

type Handler struct {
	hub     *Hub
	service service.IAgentService
	auth    fiber.Handler
	logger  logger.ILogger
}

func NewHandler(hub *Hub, service service.IAgentService, auth fiber.Handler, log logger.ILogger) *Handler {
	return &Handler{hub: hub, service: service, auth: auth, logger: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/ws")
	if h.auth != nil {
		g.Use(h.tokenFromQuery, h.auth)
	}
	g.Get("/agent/:id", h.Serve)
}

// tokenFromQuery lets browsers, which cannot set headers on upgrade
// requests, pass the bearer token as ?token=.
func (h *Handler) tokenFromQuery(c *fiber.Ctx) error {
	if token := c.Query("token"); token != "" && c.Get(fiber.HeaderAuthorization) == "" {
		c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return c.Next()
}

func (h *Handler) Serve(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	if _, err := h.service.GetHistory(c.Context(), sessionID); err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("WebSocket", "Session socket opened", map[string]interface{}{"session_id": sessionID.String()})
		ServeWs(h.hub, conn, sessionID, h.ask)
		h.logger.Info("WebSocket", "Session socket closed", map[string]interface{}{"session_id": sessionID.String()})
	})(c)
}

func (h *Handler) ask(c *Client, text string) {
	question := parseQuestion(text)
	if question == "" {
		c.Send <- encode(outbound{Type: TypeError, Code: fiber.StatusBadRequest, Message: "question is required"})
		return
	}

	req := &dto.AskRequest{Question: question}
	if err := serverutils.ValidateRequest(req); err != nil {
		c.Send <- encode(errorFrame(err))
		return
	}

	ctx := c.Context()
	res, err := h.service.Ask(ctx, c.SessionID, req)
	if err != nil {
		c.Send <- encode(errorFrame(err))
		return
	}

	c.Send <- encode(outbound{Type: TypeAnswer, Data: res})
	// the turn is stored; other viewers get it even if the asker just left
	h.hub.Publish(context.WithoutCancel(ctx), c.SessionID, encode(outbound{Type: TypeTurn, Data: res}), c)
}

func errorFrame(err error) outbound {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return outbound{Type: TypeError, Code: code, Message: err.Error()}
}
