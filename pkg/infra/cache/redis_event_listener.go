package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/channel"
	"github.com/sirupsen/logrus"
)

const reconnectDelay = time.Second

type redisEventListener struct {
	logger   *logrus.Logger
	cache    Client
	registry map[string]reflect.Type

	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewRedisEventListener(
	logger *logrus.Logger,
	cache Client,
	registry map[string]reflect.Type,
) EventListener {
	return &redisEventListener{
		logger:   logger,
		cache:    cache,
		registry: registry,
		handlers: make(map[string][]EventHandler),
	}
}

func (r *redisEventListener) Register(eventType string, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

func (r *redisEventListener) Listen(ctx context.Context, channels ...channel.Channel) {
	var channelNames []string
	for _, ch := range channels {
		channelNames = append(channelNames, string(ch))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("redis pubsub listener shutting down")
			return
		default:
		}

		r.listenOnce(ctx, channelNames)

		if ctx.Err() != nil {
			return
		}

		r.logger.Warn("redis pubsub disconnected, reconnecting in 1s...")
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (r *redisEventListener) listenOnce(ctx context.Context, channelNames []string) {
	pubSub := r.cache.RedisClient().Subscribe(ctx, channelNames...)
	defer func() { _ = pubSub.Close() }()

	r.logger.WithField("channels", channelNames).Debug("redis pubsub connected")

	stop := context.AfterFunc(ctx, func() { _ = pubSub.Close() })
	defer stop()

	for msg := range pubSub.Channel() {
		if ctx.Err() != nil {
			return
		}
		r.handleMessage(ctx, msg.Payload)
	}
}

func (r *redisEventListener) handleMessage(ctx context.Context, payload string) {
	var envelope EventEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		r.logger.WithError(err).Error("error decoding redis message")
		return
	}

	if _, ok := r.registry[envelope.Type]; !ok {
		r.logger.WithError(fmt.Errorf("unknown event type: %s", envelope.Type)).Error("error getting event type")
		return
	}

	r.mu.RLock()
	handlers := r.handlers[envelope.Type]
	r.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, envelope.Event); err != nil {
			r.logger.WithError(err).WithField("event_type", envelope.Type).Error("error executing subscriber")
		}
	}
}
