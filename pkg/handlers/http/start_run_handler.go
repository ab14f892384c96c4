package http

import (
	"github.com/NeuralTrust/TrustRedTeam/pkg/app/run"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type startRunHandler struct {
	logger   *logrus.Logger
	runner   run.Runner
	defaults request.Defaults
}

func NewStartRunHandler(logger *logrus.Logger, runner run.Runner, defaults request.Defaults) Handler {
	return &startRunHandler{
		logger:   logger,
		runner:   runner,
		defaults: defaults,
	}
}

// Handle @Summary Start a simulation run
// @Description Starts a red-team simulation against an agent. Only one run is active at a time; while one is running its snapshot is returned instead.
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body request.StartRunRequest true "Run parameters"
// @Success 202 {object} simulation.Snapshot "Run started"
// @Success 200 {object} simulation.Snapshot "A run is already in progress"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Router /api/v1/runs [post]
func (h *startRunHandler) Handle(c *fiber.Ctx) error {
	var req request.StartRunRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	snapshot, started, err := h.runner.Start(c.UserContext(), req.ToRunRequest(h.defaults))
	if err != nil {
		h.logger.WithError(err).Error("failed to start simulation run")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrInternalServer})
	}

	if !started {
		h.logger.WithError(simulation.ErrRunInProgress).
			WithField("run_id", snapshot.RunID).
			Info("start request ignored")
		return c.Status(fiber.StatusOK).JSON(snapshot)
	}
	return c.Status(fiber.StatusAccepted).JSON(snapshot)
}
