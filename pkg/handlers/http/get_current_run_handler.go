package http

import (
	"github.com/NeuralTrust/TrustRedTeam/pkg/app/run"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getCurrentRunHandler struct {
	logger *logrus.Logger
	runner run.Runner
}

func NewGetCurrentRunHandler(logger *logrus.Logger, runner run.Runner) Handler {
	return &getCurrentRunHandler{
		logger: logger,
		runner: runner,
	}
}

// Handle @Summary Get the current run
// @Description Returns the snapshot of the active run, or of the last finished one
// @Tags Runs
// @Produce json
// @Success 200 {object} simulation.Snapshot "Run snapshot"
// @Failure 404 {object} map[string]interface{} "No run yet"
// @Router /api/v1/runs/current [get]
func (h *getCurrentRunHandler) Handle(c *fiber.Ctx) error {
	snapshot, ok := h.runner.Current()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": simulation.ErrNoActiveRun.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(snapshot)
}
