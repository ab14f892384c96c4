package simclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	streamPathFormat = "/api/agents/%s/simulate/stream"
	healthPath       = "/health"
	acceptEncoding   = "br, gzip, zstd, deflate"
	maxErrorBodySize = 4096
)

//go:generate mockery --name=StreamOpener --dir=. --output=./mocks --filename=stream_opener_mock.go --case=underscore --with-expecter
type StreamOpener interface {
	// OpenStream starts a run on the backend and returns its event stream.
	// The caller must close it.
	OpenStream(ctx context.Context, req simulation.RunRequest) (io.ReadCloser, error)
}

//go:generate mockery --name=HealthChecker --dir=. --output=./mocks --filename=health_checker_mock.go --case=underscore --with-expecter
type HealthChecker interface {
	Health(ctx context.Context) (*Health, error)
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Service   string `json:"service,omitempty"`
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

type Client struct {
	baseURL        string
	streamClient   httpx.Client
	probeClient    httpx.Client
	circuitBreaker httpx.CircuitBreaker
	logger         *logrus.Logger
}

func NewClient(
	baseURL string,
	logger *logrus.Logger,
	circuitBreaker httpx.CircuitBreaker,
	opts ...Option,
) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		streamClient:   NewStreamingHTTPClient(httpx.DefaultTimeout),
		probeClient:    httpx.NewFastHTTPClient(),
		circuitBreaker: circuitBreaker,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStreamingHTTPClient builds a client suited to long-lived response
// bodies: only connection setup and response headers are bounded.
func NewStreamingHTTPClient(connectTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:errcheck
	transport.ResponseHeaderTimeout = connectTimeout
	transport.TLSHandshakeTimeout = connectTimeout
	transport.DisableCompression = true
	return &http.Client{Transport: transport}
}

func (c *Client) OpenStream(ctx context.Context, req simulation.RunRequest) (io.ReadCloser, error) {
	if req.AgentID == "" {
		return nil, simulation.NewTransportError("agent id is required", simulation.ErrTransport)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run request: %w", err)
	}
	endpoint := c.baseURL + fmt.Sprintf(streamPathFormat, url.PathEscape(req.AgentID))

	var (
		resp  *http.Response
		cause error
	)
	err = c.circuitBreaker.Execute(func() error {
		resp, cause = c.doOpen(ctx, endpoint, body)
		return cause
	})
	if err != nil {
		if cause == nil {
			cause = err
		}
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("agent_id", req.AgentID).Error("failed to open simulation stream")
		}
		return nil, simulation.NewTransportError(transportMessage(err, cause), err)
	}

	stream, err := httpx.DecodeReader(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, simulation.NewTransportError(err.Error(), err)
	}
	return stream, nil
}

func (c *Client) doOpen(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Accept-Encoding", acceptEncoding)
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
	return resp, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call simulation backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

func transportMessage(err, cause error) string {
	if httpx.IsCircuitOpen(err) {
		return "simulation backend unavailable"
	}
	var statusErr *StatusError
	if errors.As(cause, &statusErr) {
		return statusErr.Error()
	}
	var urlErr *url.Error
	if errors.As(cause, &urlErr) {
		return urlErr.Err.Error()
	}
	return cause.Error()
}
