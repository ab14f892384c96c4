package telemetry

import "context"

// Exporter ships finished run reports to an external sink. The registered
// instance is a prototype; WithSettings returns a configured copy.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Handle(ctx context.Context, report *RunReport) error
	Close()
}

type ExporterConfig struct {
	Name     string                 `json:"name" mapstructure:"name"`
	Settings map[string]interface{} `json:"settings" mapstructure:"settings"`
}
