package telemetry

import (
	"errors"
	"fmt"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/telemetry"
)

type ExporterLocator struct {
	exporters map[string]telemetry.Exporter
}

func NewExporterLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]telemetry.Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(exporter telemetry.ExporterConfig) (telemetry.Exporter, error) {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	if err := base.ValidateConfig(exporter.Settings); err != nil {
		return nil, err
	}
	return base.WithSettings(exporter.Settings)
}

func (p *ExporterLocator) ValidateExporter(exporter telemetry.ExporterConfig) error {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	return base.ValidateConfig(exporter.Settings)
}

// Build configures every exporter in order. On failure the ones already
// built are closed.
func (p *ExporterLocator) Build(configs []telemetry.ExporterConfig) ([]telemetry.Exporter, error) {
	exporters := make([]telemetry.Exporter, 0, len(configs))
	for _, cfg := range configs {
		exporter, err := p.GetExporter(cfg)
		if err != nil {
			for _, built := range exporters {
				built.Close()
			}
			return nil, errors.Join(fmt.Errorf("failed to build exporter %q", cfg.Name), err)
		}
		exporters = append(exporters, exporter)
	}
	return exporters, nil
}
