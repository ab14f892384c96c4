package http

import (
	"errors"

	"github.com/NeuralTrust/TrustRedTeam/pkg/app/run"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getRunHandler struct {
	logger *logrus.Logger
	runner run.Runner
}

func NewGetRunHandler(logger *logrus.Logger, runner run.Runner) Handler {
	return &getRunHandler{
		logger: logger,
		runner: runner,
	}
}

// Handle @Summary Get a run by ID
// @Tags Runs
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} simulation.Snapshot "Run snapshot"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /api/v1/runs/{run_id} [get]
func (h *getRunHandler) Handle(c *fiber.Ctx) error {
	runID := c.Params("run_id")
	if runID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrRunIDRequired})
	}

	snapshot, err := h.runner.Get(c.UserContext(), runID)
	if err != nil {
		if errors.Is(err, simulation.ErrRunNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).WithField("run_id", runID).Error("failed to get simulation run")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrInternalServer})
	}
	return c.Status(fiber.StatusOK).JSON(snapshot)
}
