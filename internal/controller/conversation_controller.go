package controller

import (
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/conversations", auth)
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Get("/:id", c.Get)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	res, err := c.service.List(ctx.UserContext(), userId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *conversationController) Get(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	res, err := c.service.Get(ctx.UserContext(), userId, ctx.Params("id"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(res)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	userId, ok := serverutils.UserID(ctx)
	if !ok {
		return unauthorized(ctx)
	}

	res, err := c.service.Create(ctx.UserContext(), userId)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}
