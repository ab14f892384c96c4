package cache

import (
	"context"
	"encoding/json"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/channel"
)

// EventHandler receives the raw event body of one envelope.
type EventHandler func(ctx context.Context, payload json.RawMessage) error

type EventListener interface {
	Listen(ctx context.Context, channels ...channel.Channel)
	Register(eventType string, handler EventHandler)
}
