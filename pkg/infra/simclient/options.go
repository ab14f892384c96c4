package simclient

import "github.com/NeuralTrust/TrustRedTeam/pkg/infra/httpx"

type Option func(*Client)

// WithStreamClient sets the client used for the long-lived run stream.
func WithStreamClient(client httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.streamClient = client
		}
	}
}

// WithProbeClient sets the client used for short health calls.
func WithProbeClient(client httpx.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.probeClient = client
		}
	}
}
