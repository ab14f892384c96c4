package http

import (
	"context"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/simclient"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthProbeTimeout = 5 * time.Second

type getBackendHealthHandler struct {
	logger  *logrus.Logger
	checker simclient.HealthChecker
}

func NewGetBackendHealthHandler(logger *logrus.Logger, checker simclient.HealthChecker) Handler {
	return &getBackendHealthHandler{
		logger:  logger,
		checker: checker,
	}
}

// Handle @Summary Simulation backend health
// @Tags Backend
// @Produce json
// @Success 200 {object} simclient.Health "Backend is healthy"
// @Failure 503 {object} map[string]interface{} "Backend unreachable"
// @Router /api/v1/backend/health [get]
func (h *getBackendHealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthProbeTimeout)
	defer cancel()

	health, err := h.checker.Health(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("simulation backend health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(health)
}
