package controller

import (
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/serverutils"
	internalWS "genie-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IRealtimeController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
}

type realtimeController struct {
	hub    *internalWS.Hub
	tokens *serverutils.TokenManager
	logger logger.ILogger
}

func NewRealtimeController(hub *internalWS.Hub, tokens *serverutils.TokenManager, log logger.ILogger) IRealtimeController {
	return &realtimeController{hub: hub, tokens: tokens, logger: log}
}

func (c *realtimeController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", c.ServeWs)
}

// ServeWs authenticates the handshake with a bearer header or a ?token= query parameter,
// since browsers cannot set headers on websocket requests.
func (c *realtimeController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(ctx.Get(fiber.HeaderAuthorization))
	}

	userID, err := c.tokens.Verify(tokenStr)
	if err != nil {
		c.logger.Warn("REALTIME", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Invalid token", err))
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("REALTIME", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(c.hub, conn, userID)
		c.logger.Info("REALTIME", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(ctx)
}
