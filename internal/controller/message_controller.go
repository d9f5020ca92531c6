package controller

import (
	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IMessageService
}

func NewMessageController(service service.IMessageService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/messages", auth)
	h.Post("/:conversationId", c.Create)
}

func (c *messageController) Create(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	var req dto.CreateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badBody(ctx, err)
	}

	res, err := c.service.Append(ctx.UserContext(), userId, ctx.Params("conversationId"), &req)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}
