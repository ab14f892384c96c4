package middleware

import (
	"errors"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type requestLogMiddleware struct {
	logger *logrus.Logger
}

func NewRequestLogMiddleware(logger *logrus.Logger) Middleware {
	return &requestLogMiddleware{logger: logger}
}

func (m *requestLogMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
		case err != nil:
			status = fiber.StatusInternalServerError
		}

		entry := m.logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if client := utils.ParseUserAgent(c.Get(fiber.HeaderUserAgent), c.Get(fiber.HeaderAcceptLanguage)); client != nil {
			entry = entry.WithFields(logrus.Fields{
				"client_device":  client.Device,
				"client_os":      client.OS,
				"client_browser": client.Browser,
			})
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			if err != nil && fiberErr == nil {
				entry = entry.WithError(err)
			}
			entry.Error("request failed")
		case status >= fiber.StatusBadRequest:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
		return err
	}
}
