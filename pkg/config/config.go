package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	MinIterations = 1
	MaxIterations = 100
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Export     ExportConfig     `mapstructure:"export"`
}

type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	MetricsPort int        `mapstructure:"metrics_port"`
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig controls cross-origin access from the dashboard frontend.
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	MaxAge           string   `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	EnableRunMetrics   bool `mapstructure:"enable_run_metrics"`
	EnableFrameMetrics bool `mapstructure:"enable_frame_metrics"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TLS         bool          `mapstructure:"tls"`
	TLSOptions  TLSConfig     `mapstructure:"tls_options"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
}

type SimulationConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	ConnectTimeout       time.Duration `mapstructure:"connect_timeout"`
	BreakerMaxFailures   int           `mapstructure:"breaker_max_failures"`
	BreakerTimeout       time.Duration `mapstructure:"breaker_timeout"`
	DefaultIterations    int           `mapstructure:"default_iterations"`
	DefaultDefensePrompt string        `mapstructure:"default_defense_prompt"`
}

type WebSocketConfig struct {
	MaxConnections int           `mapstructure:"max_connections"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
}

// ExportConfig lists the sinks that receive a report of every finished run.
type ExportConfig struct {
	Workers   int              `mapstructure:"workers"`
	QueueSize int              `mapstructure:"queue_size"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	Exporters []ExporterConfig `mapstructure:"exporters"`
}

type ExporterConfig struct {
	Name     string                 `mapstructure:"name"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

var globalConfig Config

var defaults = map[string]interface{}{
	"server.port":                       8080,
	"server.metrics_port":               9090,
	"server.cors.allow_origins":         []string{"*"},
	"server.cors.allow_methods":         []string{"GET", "POST", "DELETE", "OPTIONS"},
	"server.cors.allow_credentials":     false,
	"server.cors.expose_headers":        []string{},
	"server.cors.max_age":               "600",
	"metrics.enabled":                   true,
	"metrics.enable_run_metrics":        true,
	"metrics.enable_frame_metrics":      true,
	"logging.level":                     "info",
	"logging.dir":                       "logs",
	"redis.enabled":                     false,
	"redis.host":                        "localhost",
	"redis.port":                        6379,
	"redis.password":                    "",
	"redis.db":                          0,
	"redis.tls":                         false,
	"redis.tls_options.ca_cert":         "",
	"redis.tls_options.client_cert":     "",
	"redis.tls_options.client_key":      "",
	"redis.tls_options.insecure":        false,
	"redis.tls_options.max_version":     "TLS13",
	"redis.snapshot_ttl":                "24h",
	"simulation.base_url":               "http://localhost:8000",
	"simulation.timeout":                "5m",
	"simulation.connect_timeout":        "30s",
	"simulation.breaker_max_failures":   3,
	"simulation.breaker_timeout":        "30s",
	"simulation.default_iterations":     4,
	"simulation.default_defense_prompt": "Be ethical and safe.",
	"websocket.max_connections":         100,
	"websocket.ping_period":             "30s",
	"websocket.pong_wait":               "45s",
	"export.workers":                    1,
	"export.queue_size":                 100,
	"export.timeout":                    "10s",
}

// LoadEnv reads an optional dotenv file into the process environment.
func LoadEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	return godotenv.Load(envFile)
}

// Load reads config.yaml from configPath (or ./config, .) and overlays the
// environment, e.g. SIMULATION_BASE_URL. A missing file is not an error.
func Load(configPath string) error {
	cfg, err := Read(configPath)
	if err != nil {
		return err
	}
	globalConfig = *cfg
	return nil
}

func Read(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file config.yaml: %w", err)
		}
	}

	cfg := new(Config)
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hooks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Simulation.BaseURL); err != nil {
		return fmt.Errorf("invalid simulation.base_url %q: %w", c.Simulation.BaseURL, err)
	}
	if c.Simulation.Timeout <= 0 {
		return errors.New("simulation.timeout must be positive")
	}
	if c.Simulation.DefaultIterations < MinIterations || c.Simulation.DefaultIterations > MaxIterations {
		return fmt.Errorf("simulation.default_iterations must be between %d and %d", MinIterations, MaxIterations)
	}
	if c.Simulation.BreakerMaxFailures <= 0 {
		return errors.New("simulation.breaker_max_failures must be positive")
	}
	if c.Server.Port <= 0 || c.Server.MetricsPort <= 0 {
		return errors.New("server ports must be positive")
	}
	if c.Metrics.Enabled && c.Server.Port == c.Server.MetricsPort {
		return errors.New("server.port and server.metrics_port must differ")
	}
	if c.WebSocket.MaxConnections <= 0 {
		return errors.New("websocket.max_connections must be positive")
	}
	for i, exporter := range c.Export.Exporters {
		if exporter.Name == "" {
			return fmt.Errorf("export.exporters[%d].name is required", i)
		}
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
