package hub

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(opts ...Option) *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger, opts...)
}

func snapshotAt(progress float64) simulation.Snapshot {
	return simulation.Snapshot{
		RunID:    "run-1",
		State:    simulation.RunStateRunning,
		Progress: progress,
		Messages: []simulation.Message{},
	}
}

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	h := newTestHub()
	first, err := h.Subscribe()
	require.NoError(t, err)
	second, err := h.Subscribe()
	require.NoError(t, err)

	h.Broadcast(snapshotAt(25))

	assert.Equal(t, 25.0, (<-first.C).Progress)
	assert.Equal(t, 25.0, (<-second.C).Progress)
}

func TestHub_NewSubscriberGetsLatest(t *testing.T) {
	h := newTestHub()
	h.Broadcast(snapshotAt(25))
	h.Broadcast(snapshotAt(50))

	sub, err := h.Subscribe()
	require.NoError(t, err)

	got := <-sub.C
	assert.Equal(t, 50.0, got.Progress)
	assert.Len(t, sub.C, 0)
}

func TestHub_NoLatestBeforeFirstBroadcast(t *testing.T) {
	h := newTestHub()
	_, ok := h.Latest()
	assert.False(t, ok)

	sub, err := h.Subscribe()
	require.NoError(t, err)
	assert.Len(t, sub.C, 0)
}

func TestHub_PublishBroadcasts(t *testing.T) {
	h := newTestHub()
	sub, err := h.Subscribe()
	require.NoError(t, err)

	require.NoError(t, h.Publish(context.Background(), snapshotAt(100)))

	assert.Equal(t, 100.0, (<-sub.C).Progress)
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 100.0, latest.Progress)
}

func TestHub_SubscriberLimit(t *testing.T) {
	h := newTestHub(WithMaxSubscribers(2))
	a, err := h.Subscribe()
	require.NoError(t, err)
	_, err = h.Subscribe()
	require.NoError(t, err)

	assert.False(t, h.HasCapacity())
	_, err = h.Subscribe()
	assert.ErrorIs(t, err, ErrTooManySubscribers)

	h.Unsubscribe(a)
	_, err = h.Subscribe()
	assert.NoError(t, err)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub()
	sub, err := h.Subscribe()
	require.NoError(t, err)

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers())

	h.Broadcast(snapshotAt(10))
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	h := newTestHub()
	sub, err := h.Subscribe()
	require.NoError(t, err)

	total := subscriptionBuffer + 5
	for i := 1; i <= total; i++ {
		h.Broadcast(snapshotAt(float64(i)))
	}

	require.Len(t, sub.C, subscriptionBuffer)
	var last simulation.Snapshot
	for i := 0; i < subscriptionBuffer; i++ {
		last = <-sub.C
	}
	assert.Equal(t, float64(total), last.Progress)
}

func TestHub_SnapshotsAreDetached(t *testing.T) {
	h := newTestHub()
	sub, err := h.Subscribe()
	require.NoError(t, err)

	snapshot := snapshotAt(10)
	snapshot.Messages = []simulation.Message{{ID: "attack-0", Content: "original"}}
	h.Broadcast(snapshot)
	snapshot.Messages[0].Content = "mutated"

	got := <-sub.C
	assert.Equal(t, "original", got.Messages[0].Content)
	latest, _ := h.Latest()
	assert.Equal(t, "original", latest.Messages[0].Content)
}

func TestHub_Gauge(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_ws_connections"})
	h := newTestHub(WithGauge(gauge))

	subs := make([]*Subscription, 3)
	for i := range subs {
		sub, err := h.Subscribe()
		require.NoError(t, err, fmt.Sprintf("subscribe %d", i))
		subs[i] = sub
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(gauge))

	h.Unsubscribe(subs[0])
	assert.Equal(t, 2.0, testutil.ToFloat64(gauge))
}

func TestSemaphore(t *testing.T) {
	s := NewSemaphore(1)
	assert.True(t, s.Acquire())
	assert.False(t, s.Acquire())
	assert.Equal(t, 1, s.GetCurrentConnections())
	assert.Equal(t, 0, s.Available())
	s.Release()
	s.Release()
	assert.Equal(t, 0, s.GetCurrentConnections())
	assert.True(t, s.Acquire())
}
