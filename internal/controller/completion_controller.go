package controller

import (
	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICompletionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Query(ctx *fiber.Ctx) error
}

type completionController struct {
	service service.ICompletionService
}

func NewCompletionController(service service.ICompletionService) ICompletionController {
	return &completionController{service: service}
}

func (c *completionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/openai", auth)
	h.Post("/query", c.Query)
}

func (c *completionController) Query(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badBody(ctx, err)
	}

	res, err := c.service.Query(ctx.UserContext(), userId, &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}
