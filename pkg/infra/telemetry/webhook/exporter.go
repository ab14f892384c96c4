package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/telemetry"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx"
	infraTelemetry "github.com/NeuralTrust/TrustRedTeam/pkg/infra/telemetry"
)

const (
	ExporterName    = "webhook"
	maxErrorBodyLen = 512
)

type Config struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Exporter POSTs each run report as JSON to a configured URL.
type Exporter struct {
	cfg     Config
	client  httpx.Client
	breaker httpx.CircuitBreaker
}

func NewWebhookExporter(client httpx.Client, breaker httpx.CircuitBreaker) *Exporter {
	return &Exporter{
		client:  client,
		breaker: breaker,
	}
}

func (p *Exporter) Name() string {
	return ExporterName
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	var conf Config
	if err := infraTelemetry.DecodeSettings(settings, &conf); err != nil {
		return fmt.Errorf("invalid webhook config: %w", err)
	}
	if conf.URL == "" {
		return errors.New("webhook url is required")
	}
	u, err := url.ParseRequestURI(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid webhook url %q", conf.URL)
	}
	return nil
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	var conf Config
	if err := infraTelemetry.DecodeSettings(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	return &Exporter{
		cfg:     conf,
		client:  p.client,
		breaker: p.breaker,
	}, nil
}

func (p *Exporter) Handle(ctx context.Context, report *telemetry.RunReport) error {
	if p.cfg.URL == "" {
		return errors.New("webhook exporter is not configured")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	send := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range p.cfg.Headers {
			req.Header.Set(key, value)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
			return fmt.Errorf("webhook answered %d: %s", resp.StatusCode, string(body))
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if p.breaker == nil {
		return send()
	}
	return p.breaker.Execute(send)
}

func (p *Exporter) Close() {}
