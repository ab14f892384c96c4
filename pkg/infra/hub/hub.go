package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxSubscribers = 100
	subscriptionBuffer    = 16
)

var ErrTooManySubscribers = errors.New("maximum live feed subscribers reached")

type Option func(*Hub)

func WithMaxSubscribers(n int) Option {
	return func(h *Hub) {
		h.semaphore = NewSemaphore(n)
	}
}

// WithGauge tracks the number of open subscriptions.
func WithGauge(g prometheus.Gauge) Option {
	return func(h *Hub) {
		h.gauge = g
	}
}

// Hub fans snapshots out to live subscribers and remembers the latest one.
type Hub struct {
	logger    *logrus.Logger
	semaphore *Semaphore
	gauge     prometheus.Gauge

	mu          sync.RWMutex
	subscribers map[string]*Subscription
	latest      *simulation.Snapshot
}

type Subscription struct {
	ID string
	C  <-chan simulation.Snapshot

	ch chan simulation.Snapshot
}

func New(logger *logrus.Logger, opts ...Option) *Hub {
	h := &Hub{
		logger:      logger,
		semaphore:   NewSemaphore(DefaultMaxSubscribers),
		subscribers: make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscriber. Its channel starts with the latest
// snapshot when one exists.
func (h *Hub) Subscribe() (*Subscription, error) {
	if !h.semaphore.Acquire() {
		return nil, ErrTooManySubscribers
	}
	ch := make(chan simulation.Snapshot, subscriptionBuffer)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	if h.latest != nil {
		ch <- h.latest.Clone()
	}
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.Inc()
	}
	h.logger.WithField("subscriber_id", sub.ID).Debug("live feed subscriber registered")
	return sub, nil
}

// Unsubscribe closes the subscription channel. Unknown ids are ignored.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.subscribers[sub.ID]
	if ok {
		delete(h.subscribers, sub.ID)
		close(sub.ch)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	h.semaphore.Release()
	if h.gauge != nil {
		h.gauge.Dec()
	}
	h.logger.WithField("subscriber_id", sub.ID).Debug("live feed subscriber removed")
}

func (h *Hub) Broadcast(snapshot simulation.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	latest := snapshot.Clone()
	h.latest = &latest
	for _, sub := range h.subscribers {
		h.deliver(sub, snapshot.Clone())
	}
}

// Publish lets the hub sit directly behind the run driver.
func (h *Hub) Publish(_ context.Context, snapshot simulation.Snapshot) error {
	h.Broadcast(snapshot)
	return nil
}

func (h *Hub) Latest() (simulation.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return simulation.Snapshot{}, false
	}
	return h.latest.Clone(), true
}

// HasCapacity reports whether Subscribe would currently succeed.
func (h *Hub) HasCapacity() bool {
	return h.semaphore.Available() > 0
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// deliver never blocks. Snapshots are cumulative, so a slow subscriber
// loses its oldest pending one.
func (h *Hub) deliver(sub *Subscription, snapshot simulation.Snapshot) {
	select {
	case sub.ch <- snapshot:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- snapshot:
	default:
		h.logger.WithField("subscriber_id", sub.ID).Warn("live feed subscriber is not keeping up, snapshot dropped")
	}
}
