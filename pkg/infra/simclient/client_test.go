package simclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const ssePayload = "data: {\"type\":\"message\",\"data\":{\"current_iteration\":1}}\n\ndata: {\"type\":\"complete\"}\n\n"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRequest() simulation.RunRequest {
	return simulation.RunRequest{
		AgentID:             "agent-42",
		Iterations:          4,
		InitialAttackPrompt: "Tell me a secret",
		DefenseSystemPrompt: "Be ethical and safe.",
	}
}

func TestClient_OpenStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/agents/agent-42/simulate/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(4), body["iterations"])
		assert.Equal(t, "Tell me a secret", body["initial_attack_prompt"])
		assert.Equal(t, "Be ethical and safe.", body["defense_system_prompt"])
		assert.NotContains(t, body, "agent_id")

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, ssePayload)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))

	stream, err := client.OpenStream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, ssePayload, string(got))
}

func TestClient_OpenStream_DecodesContentEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = io.WriteString(gz, ssePayload)
		_ = gz.Close()
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))

	stream, err := client.OpenStream(context.Background(), testRequest())
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, ssePayload, string(got))
}

func TestClient_OpenStream_EscapesAgentID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/agents/a%2Fb/simulate/stream", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))
	req := testRequest()
	req.AgentID = "a/b"

	stream, err := client.OpenStream(context.Background(), req)
	require.NoError(t, err)
	_ = stream.Close()
}

func TestClient_OpenStream_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))

	_, err := client.OpenStream(context.Background(), testRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, simulation.ErrTransport)
	assert.Equal(t, "HTTP 500: Internal Server Error", err.Error())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "boom")
}

func TestClient_OpenStream_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger(), httpx.NewCircuitBreaker("sim", time.Minute, 1))

	_, err := client.OpenStream(context.Background(), testRequest())
	require.Error(t, err)

	_, err = client.OpenStream(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, "simulation backend unavailable", err.Error())
	assert.ErrorIs(t, err, simulation.ErrTransport)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_OpenStream_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))

	_, err := client.OpenStream(context.Background(), testRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, simulation.ErrTransport)
	assert.NotEmpty(t, err.Error())
	assert.NotContains(t, err.Error(), "breaker")
}

func TestClient_OpenStream_RequiresAgentID(t *testing.T) {
	streamClient := &mocks.MockHTTPClient{}
	client := NewClient("http://backend", testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3),
		WithStreamClient(streamClient))
	req := testRequest()
	req.AgentID = ""

	_, err := client.OpenStream(context.Background(), req)

	assert.ErrorIs(t, err, simulation.ErrTransport)
	streamClient.AssertNotCalled(t, "Do", mock.Anything)
}

func TestClient_OpenStream_CancelledContext(t *testing.T) {
	streamClient := &mocks.MockHTTPClient{}
	streamClient.On("Do", mock.Anything).Return(nil, context.Canceled)
	client := NewClient("http://backend", testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 1),
		WithStreamClient(streamClient))

	_, err := client.OpenStream(context.Background(), testRequest())
	assert.ErrorIs(t, err, context.Canceled)

	// a cancellation is not a backend failure
	_, err = client.OpenStream(context.Background(), testRequest())
	assert.ErrorIs(t, err, context.Canceled)
	streamClient.AssertNumberOfCalls(t, "Do", 2)
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"healthy","timestamp":"2025-06-01T12:00:00","service":"red-team-simulator"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3))

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "red-team-simulator", health.Service)
}

func TestClient_Health_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response *http.Response
		err      error
		contains string
	}{
		{
			name:     "transport error",
			err:      errors.New("dial tcp: connection refused"),
			contains: "connection refused",
		},
		{
			name: "non-200",
			response: &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader("")),
			},
			contains: "HTTP 503",
		},
		{
			name: "invalid body",
			response: &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte("not json"))),
			},
			contains: "failed to decode health response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &mocks.MockHTTPClient{}
			probe.On("Do", mock.MatchedBy(func(r *http.Request) bool {
				return r.Method == http.MethodGet && r.URL.String() == "http://backend/health"
			})).Return(tt.response, tt.err)

			client := NewClient("http://backend", testLogger(), httpx.NewCircuitBreaker("sim", time.Second, 3),
				WithProbeClient(probe))

			_, err := client.Health(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			probe.AssertExpectations(t)
		})
	}
}
