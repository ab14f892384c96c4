package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/event"
)

type EventSubscriber[T any] interface {
	OnEvent(ctx context.Context, ev T) error
}

func RegisterEventSubscriber[T event.Event](listener EventListener, subscriber EventSubscriber[T]) {
	var zero T
	listener.Register(zero.Type(), func(ctx context.Context, payload json.RawMessage) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("error unmarshalling %s: %w", zero.Type(), err)
		}
		return subscriber.OnEvent(ctx, ev)
	})
}
