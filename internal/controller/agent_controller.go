package controller

import (
	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/serverutils"
	"ai-sqlagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	GetTurns(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	GetCatalog(ctx *fiber.Ctx) error
}

type agentController struct {
	service service.IAgentService
	auth    fiber.Handler
}

func NewAgentController(service service.IAgentService, auth fiber.Handler) IAgentController {
	return &agentController{service: service, auth: auth}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Get("catalog", c.GetCatalog)
	h.Post("sessions", c.CreateSession)
	h.Post("sessions/:id/ask", c.Ask)
	h.Get("sessions/:id/history", c.GetHistory)
	h.Get("sessions/:id/turns", c.GetTurns)
	h.Delete("sessions/:id", c.DeleteSession)
}

func sessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

func (c *agentController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *agentController) Ask(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *agentController) GetHistory(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *agentController) GetTurns(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetTurns(ctx.Context(), id, ctx.QueryInt("limit", 20), ctx.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get turns", res))
}

func (c *agentController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete session", nil))
}

func (c *agentController) GetCatalog(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get catalog", c.service.GetCatalog(ctx.Context())))
}
