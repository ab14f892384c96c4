package http

import (
	"context"
	"errors"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/app/run"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const stopTimeout = 10 * time.Second

type stopRunHandler struct {
	logger *logrus.Logger
	runner run.Runner
}

func NewStopRunHandler(logger *logrus.Logger, runner run.Runner) Handler {
	return &stopRunHandler{
		logger: logger,
		runner: runner,
	}
}

// Handle @Summary Stop the active run
// @Description Cancels the active run; it ends in state cancelled
// @Tags Runs
// @Success 204 "Run stopped"
// @Failure 404 {object} map[string]interface{} "No active run"
// @Router /api/v1/runs/current [delete]
func (h *stopRunHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), stopTimeout)
	defer cancel()

	if err := h.runner.Stop(ctx); err != nil {
		if errors.Is(err, simulation.ErrNoActiveRun) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to stop simulation run")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrInternalServer})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
