package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/config"
	infraPrometheus "github.com/NeuralTrust/TrustRedTeam/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	HealthPath      = "/health"
	MetricsPath     = "/metrics"
	shutdownTimeout = 10 * time.Second
)

type Server interface {
	Run() error
	Shutdown(ctx context.Context) error
}

type BaseServer struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Router     *fiber.App
	MetricsApp *fiber.App
}

func NewBaseServer(config *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		EnablePrintRoutes:     false,
		BodyLimit:             1 * 1024 * 1024,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})
	r.Use(recover.New())

	r.Server().NoDefaultServerHeader = true

	server := &BaseServer{
		Config: config,
		Logger: logger,
		Router: r,
	}
	server.setupHealthCheck()
	server.setupMetricsEndpoint()
	return server
}

func (s *BaseServer) setupHealthCheck() {
	s.Router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

func (s *BaseServer) WithRouters(routers ...router.RouteBuilder) *BaseServer {
	for _, r := range routers {
		err := r.BuildRoutes(s.Router)
		if err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) setupMetricsEndpoint() {
	if !s.Config.Metrics.Enabled {
		s.Logger.Info("prometheus metrics are disabled by configuration")
		return
	}

	metricsApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	metricsApp.Use(recover.New())

	handler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(infraPrometheus.Gatherer(), promhttp.HandlerOpts{}),
	)
	metricsApp.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
	s.MetricsApp = metricsApp
}

// Run serves the API until Shutdown is called.
func (s *BaseServer) Run() error {
	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

// RunMetrics serves /metrics on its own port; it returns at once when
// metrics are disabled.
func (s *BaseServer) RunMetrics() error {
	if s.MetricsApp == nil {
		return nil
	}
	addr := fmt.Sprintf(":%d", s.Config.Server.MetricsPort)
	s.Logger.WithField("addr", addr).Info("starting metrics server")
	return s.MetricsApp.Listen(addr)
}

func (s *BaseServer) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}
	var errs []error
	if err := s.Router.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("api server: %w", err))
	}
	if s.MetricsApp != nil {
		if err := s.MetricsApp.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	return errors.Join(errs...)
}
