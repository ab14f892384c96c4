package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/config"
	"github.com/NeuralTrust/TrustRedTeam/pkg/dependency_container"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/channel"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/event"
	infraLogger "github.com/NeuralTrust/TrustRedTeam/pkg/infra/logger"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server/middleware"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server/router"
	"github.com/NeuralTrust/TrustRedTeam/pkg/version"
	"golang.org/x/sync/errgroup"
)

const (
	serverName      = "monitor"
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := config.LoadEnv(os.Getenv("ENV_FILE")); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	logOpts := infraLogger.DefaultOptions(serverName, cfg.Logging.Level)
	if cfg.Logging.Dir != "" {
		logOpts.Dir = cfg.Logging.Dir
	}
	logger, closeLogs, err := infraLogger.NewLogger(logOpts)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogs()

	logger.WithField("version", version.GetInfo().String()).Info("starting red-team monitor")

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:            cfg,
		Logger:         logger,
		EventsRegistry: event.Registry,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis connection")
		}
	}()

	middlewareTransport := middleware.NewTransport(
		container.CORSMiddleware,
		container.RequestLogMiddleware,
		container.WebSocketMiddleware,
	)
	srv := server.NewBaseServer(cfg, logger).WithRouters(
		router.NewAPIRouter(middlewareTransport, container.HandlerTransport, container.RunStreamHandler),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(srv.Run)
	g.Go(srv.RunMetrics)

	if container.RedisListener != nil {
		g.Go(func() error {
			container.RedisListener.Listen(gCtx, channel.SnapshotsChannel)
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := container.Runner.Stop(shutdownCtx); err != nil && !errors.Is(err, simulation.ErrNoActiveRun) {
			logger.WithError(err).Warn("failed to stop active simulation run")
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		return
	}
	logger.Info("server stopped")
}
