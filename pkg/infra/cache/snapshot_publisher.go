package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/channel"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/event"
)

// SnapshotPublisher persists every snapshot it receives and announces it
// on the snapshots channel.
type SnapshotPublisher struct {
	cache     Client
	publisher EventPublisher
	ttl       time.Duration
}

func NewSnapshotPublisher(cache Client, publisher EventPublisher, ttl time.Duration) *SnapshotPublisher {
	return &SnapshotPublisher{
		cache:     cache,
		publisher: publisher,
		ttl:       ttl,
	}
}

func (p *SnapshotPublisher) Publish(ctx context.Context, snapshot simulation.Snapshot) error {
	if err := p.cache.SaveSnapshot(ctx, snapshot, p.ttl); err != nil {
		return err
	}
	ev := event.SnapshotUpdatedEvent{Snapshot: snapshot}
	if err := p.publisher.Publish(ctx, channel.SnapshotsChannel, ev); err != nil {
		return fmt.Errorf("failed to publish snapshot event: %w", err)
	}
	return nil
}

// SnapshotStore answers lookups for runs this process no longer holds.
type SnapshotStore struct {
	cache Client
}

func NewSnapshotStore(cache Client) *SnapshotStore {
	return &SnapshotStore{cache: cache}
}

func (s *SnapshotStore) Get(ctx context.Context, runID string) (simulation.Snapshot, error) {
	snapshot, err := s.cache.GetSnapshot(ctx, runID)
	if err != nil {
		return simulation.Snapshot{}, err
	}
	return *snapshot, nil
}
