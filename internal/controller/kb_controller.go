package controller

import (
	"ai-sqlagent-be/internal/dto"
	"ai-sqlagent-be/internal/pkg/serverutils"
	"ai-sqlagent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeBaseController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type knowledgeBaseController struct {
	service service.IKnowledgeBaseService
	auth    fiber.Handler
}

func NewKnowledgeBaseController(service service.IKnowledgeBaseService, auth fiber.Handler) IKnowledgeBaseController {
	return &knowledgeBaseController{service: service, auth: auth}
}

func (c *knowledgeBaseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/kb/v1")
	if c.auth != nil {
		h.Use(c.auth)
	}
	h.Post("documents", c.Ingest)
	h.Delete("documents", c.Delete)
}

func (c *knowledgeBaseController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.IngestDocument(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success ingest document", res))
}

// Delete takes the source as a query parameter since sources are often paths.
func (c *knowledgeBaseController) Delete(ctx *fiber.Ctx) error {
	source := ctx.Query("source")
	if source == "" {
		return fiber.NewError(fiber.StatusBadRequest, "source is required")
	}

	if err := c.service.DeleteDocument(ctx.Context(), source); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}
