// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

// JwtMiddleware rejects the request with 401 unless it carries a valid bearer token.
func JwtMiddleware(tokens *TokenManager) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Missing token", nil))
		}

		userId, err := tokens.Verify(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid token", err))
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

// UserID returns the authenticated user id stored by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	userId, ok := ctx.Locals(userIdLocal).(uuid.UUID)
	return userId, ok
}
