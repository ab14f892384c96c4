package middleware

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CapacityChecker interface {
	HasCapacity() bool
}

type websocketMiddleware struct {
	logger   *logrus.Logger
	capacity CapacityChecker
}

func NewWebsocketMiddleware(logger *logrus.Logger, capacity CapacityChecker) Middleware {
	return &websocketMiddleware{
		logger:   logger,
		capacity: capacity,
	}
}

// Middleware only lets websocket upgrades through on /ws paths and rejects
// them early once the live feed is full.
func (m *websocketMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasSuffix(c.Path(), "/ws") {
			return c.Next()
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !m.capacity.HasCapacity() {
			m.logger.Warn("maximum websocket connections reached, rejecting connection")
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
