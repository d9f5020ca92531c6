package controller

import (
	"errors"

	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// writeError maps service errors onto HTTP statuses.
func writeError(ctx *fiber.Ctx, err error) error {
	status, message := fiber.StatusInternalServerError, "Internal server error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status, message = fiber.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrDuplicateEmail):
		status, message = fiber.StatusConflict, "User already exists"
	case errors.Is(err, service.ErrUserNotFound):
		status, message = fiber.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrNotFound):
		status, message = fiber.StatusNotFound, "Conversation not found"
	case errors.Is(err, service.ErrUpstream):
		status, message = fiber.StatusInternalServerError, "Completion failed"
	}

	return ctx.Status(status).JSON(serverutils.ErrorResponse(message, err))
}

func badBody(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid request body", err))
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Unauthorized", nil))
}
