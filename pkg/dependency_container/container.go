package dependency_container

import (
	"fmt"
	"reflect"

	"github.com/NeuralTrust/TrustRedTeam/pkg/app/run"
	"github.com/NeuralTrust/TrustRedTeam/pkg/config"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/telemetry"
	handlers "github.com/NeuralTrust/TrustRedTeam/pkg/handlers/http"
	"github.com/NeuralTrust/TrustRedTeam/pkg/handlers/http/request"
	wsHandlers "github.com/NeuralTrust/TrustRedTeam/pkg/handlers/websocket"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/event"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/subscriber"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/hub"
	infraPrometheus "github.com/NeuralTrust/TrustRedTeam/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/simclient"
	infraTelemetry "github.com/NeuralTrust/TrustRedTeam/pkg/infra/telemetry"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/telemetry/kafka"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/telemetry/webhook"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server/middleware"
	"github.com/NeuralTrust/TrustRedTeam/pkg/version"
	"github.com/sirupsen/logrus"
)

const (
	breakerName        = "simulation-backend"
	webhookBreakerName = "report-webhook"
)

type Container struct {
	// Cache, RedisListener and RedisPublisher are nil when redis is disabled.
	Cache          cache.Client
	RedisListener  cache.EventListener
	RedisPublisher cache.EventPublisher

	Hub       *hub.Hub
	SimClient *simclient.Client
	Runner    run.Runner
	// ReportWorker is nil when no exporter is configured.
	ReportWorker infraTelemetry.Worker

	HandlerTransport *handlers.HandlerTransport
	RunStreamHandler wsHandlers.Handler

	CORSMiddleware       middleware.Middleware
	RequestLogMiddleware middleware.Middleware
	WebSocketMiddleware  middleware.Middleware
}

type CacheFactory func(cfg cache.Config, logger *logrus.Logger) (cache.Client, error)

type ContainerDI struct {
	Cfg            *config.Config
	Logger         *logrus.Logger
	EventsRegistry map[string]reflect.Type
	// NewCache defaults to cache.NewClient.
	NewCache CacheFactory
	// ExporterLocator defaults to the kafka and webhook exporters.
	ExporterLocator *infraTelemetry.ExporterLocator
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg
	if di.EventsRegistry == nil {
		di.EventsRegistry = event.Registry
	}
	if di.NewCache == nil {
		di.NewCache = cache.NewClient
	}

	recorder := infraPrometheus.Recorder(infraPrometheus.NoopRecorder{})
	if cfg.Metrics.Enabled {
		infraPrometheus.Initialize(infraPrometheus.MetricsConfig{
			EnableRunMetrics:   cfg.Metrics.EnableRunMetrics,
			EnableFrameMetrics: cfg.Metrics.EnableFrameMetrics,
		})
		recorder = infraPrometheus.NewRecorder()
	}

	hubOpts := []hub.Option{hub.WithMaxSubscribers(cfg.WebSocket.MaxConnections)}
	if cfg.Metrics.Enabled {
		hubOpts = append(hubOpts, hub.WithGauge(infraPrometheus.WebsocketConnections))
	}
	liveHub := hub.New(di.Logger, hubOpts...)

	// simulation backend
	breaker := httpx.NewCircuitBreaker(
		breakerName,
		cfg.Simulation.BreakerTimeout,
		uint32(cfg.Simulation.BreakerMaxFailures), // #nosec G115
	)
	simClient := simclient.NewClient(
		cfg.Simulation.BaseURL,
		di.Logger,
		breaker,
		simclient.WithStreamClient(simclient.NewStreamingHTTPClient(cfg.Simulation.ConnectTimeout)),
		simclient.WithProbeClient(httpx.NewFastHTTPClient(
			httpx.WithTimeout(cfg.Simulation.ConnectTimeout),
			httpx.WithUserAgent(fmt.Sprintf("%s/%s", version.AppName, version.Version)),
		)),
	)

	runnerOpts := []run.Option{
		run.WithTimeout(cfg.Simulation.Timeout),
		run.WithRecorder(recorder),
	}

	c := &Container{
		Hub:       liveHub,
		SimClient: simClient,
	}

	// run report export
	if len(cfg.Export.Exporters) > 0 {
		locator := di.ExporterLocator
		if locator == nil {
			locator = newExporterLocator(cfg)
		}
		configs := make([]telemetry.ExporterConfig, 0, len(cfg.Export.Exporters))
		for _, e := range cfg.Export.Exporters {
			configs = append(configs, telemetry.ExporterConfig{Name: e.Name, Settings: e.Settings})
		}
		exporters, err := locator.Build(configs)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize report exporters: %w", err)
		}
		worker := infraTelemetry.NewWorker(
			di.Logger,
			exporters,
			infraTelemetry.WithQueueSize(cfg.Export.QueueSize),
			infraTelemetry.WithExportTimeout(cfg.Export.Timeout),
		)
		worker.StartWorkers(cfg.Export.Workers)
		runnerOpts = append(runnerOpts, run.WithPublishers(worker))
		c.ReportWorker = worker
	}

	if cfg.Redis.Enabled {
		cacheConfig := cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		if cfg.Redis.TLS {
			tlsConfig, err := config.BuildClientTLSConfig(cfg.Redis.TLSOptions)
			if err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("failed to build redis tls config: %w", err)
			}
			cacheConfig.TLSConfig = tlsConfig
		}
		cacheInstance, err := di.NewCache(cacheConfig, di.Logger)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}

		redisPublisher := cache.NewRedisEventPublisher(cacheInstance)
		redisListener := cache.NewRedisEventListener(di.Logger, cacheInstance, di.EventsRegistry)

		// every instance, this one included, feeds its hub from the channel
		snapshotSubscriber := subscriber.NewSnapshotUpdatedEventSubscriber(di.Logger, cacheInstance, liveHub)
		cache.RegisterEventSubscriber[event.SnapshotUpdatedEvent](redisListener, snapshotSubscriber)

		runnerOpts = append(runnerOpts,
			run.WithPublishers(cache.NewSnapshotPublisher(cacheInstance, redisPublisher, cfg.Redis.SnapshotTTL)),
			run.WithSnapshotFinder(cache.NewSnapshotStore(cacheInstance)),
		)

		c.Cache = cacheInstance
		c.RedisPublisher = redisPublisher
		c.RedisListener = redisListener
	} else {
		runnerOpts = append(runnerOpts, run.WithPublishers(liveHub))
	}

	runner := run.NewRunner(simClient, di.Logger, runnerOpts...)
	c.Runner = runner

	defaults := request.Defaults{
		Iterations:          cfg.Simulation.DefaultIterations,
		DefenseSystemPrompt: cfg.Simulation.DefaultDefensePrompt,
	}
	c.HandlerTransport = &handlers.HandlerTransport{
		StartRunHandler:         handlers.NewStartRunHandler(di.Logger, runner, defaults),
		GetCurrentRunHandler:    handlers.NewGetCurrentRunHandler(di.Logger, runner),
		StopRunHandler:          handlers.NewStopRunHandler(di.Logger, runner),
		GetRunHandler:           handlers.NewGetRunHandler(di.Logger, runner),
		GetBackendHealthHandler: handlers.NewGetBackendHealthHandler(di.Logger, simClient),
		GetVersionHandler:       handlers.NewGetVersionHandler(di.Logger),
	}
	c.RunStreamHandler = wsHandlers.NewRunStreamHandler(
		di.Logger,
		liveHub,
		cfg.WebSocket.PingPeriod,
		cfg.WebSocket.PongWait,
	)
	c.CORSMiddleware = middleware.NewCORSMiddleware(
		cfg.Server.CORS.AllowOrigins,
		cfg.Server.CORS.AllowMethods,
		cfg.Server.CORS.AllowCredentials,
		cfg.Server.CORS.ExposeHeaders,
		cfg.Server.CORS.MaxAge,
	)
	c.RequestLogMiddleware = middleware.NewRequestLogMiddleware(di.Logger)
	c.WebSocketMiddleware = middleware.NewWebsocketMiddleware(di.Logger, liveHub)

	return c, nil
}

// Close flushes pending run reports and releases the redis connection.
func (c *Container) Close() error {
	if c.ReportWorker != nil {
		c.ReportWorker.Shutdown()
	}
	if c.Cache == nil {
		return nil
	}
	return c.Cache.RedisClient().Close()
}

func newExporterLocator(cfg *config.Config) *infraTelemetry.ExporterLocator {
	webhookClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.Export.Timeout),
		httpx.WithUserAgent(fmt.Sprintf("%s/%s", version.AppName, version.Version)),
	)
	webhookBreaker := httpx.NewCircuitBreaker(
		webhookBreakerName,
		cfg.Simulation.BreakerTimeout,
		uint32(cfg.Simulation.BreakerMaxFailures), // #nosec G115
	)
	return infraTelemetry.NewExporterLocator(
		infraTelemetry.WithExporter(kafka.ExporterName, kafka.NewKafkaExporter()),
		infraTelemetry.WithExporter(webhook.ExporterName, webhook.NewWebhookExporter(webhookClient, webhookBreaker)),
	)
}
