package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "trustredteam"}, registry)

var (
	// Run duration buckets in seconds; runs are bounded by the simulation timeout.
	durationBuckets = []float64{
		1, 5, 15, // Short runs or early failures
		30, 60, 120, // Typical runs
		180, 240, 300, // Long runs up to the default timeout
		600,
	}

	RunsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustredteam_runs_total",
			Help: "Total number of simulation runs by terminal state",
		},
		[]string{"state"},
	)

	RunDuration = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustredteam_run_duration_seconds",
			Help:    "Simulation run duration in seconds",
			Buckets: durationBuckets,
		},
		[]string{"state"},
	)

	ActiveRuns = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "trustredteam_active_runs",
			Help: "Number of simulation runs currently streaming",
		},
	)

	FramesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustredteam_frames_total",
			Help: "Stream frames processed by frame type",
		},
		[]string{"type"},
	)

	FramesDroppedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "trustredteam_frames_dropped_total",
			Help: "Stream frames dropped because they could not be parsed",
		},
	)

	SuccessfulJailbreaks = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "trustredteam_successful_jailbreaks_total",
			Help: "Successful jailbreaks observed in finished runs",
		},
	)

	WebsocketConnections = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "trustredteam_websocket_connections",
			Help: "Number of connected live feed subscribers",
		},
	)
)

type MetricsConfig struct {
	EnableRunMetrics   bool // Run outcome and duration
	EnableFrameMetrics bool // Per-frame counters
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableRunMetrics:   true,
		EnableFrameMetrics: true,
	}
}

var (
	Config   MetricsConfig
	initOnce sync.Once
)

func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
