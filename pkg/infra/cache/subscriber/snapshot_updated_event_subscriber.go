package subscriber

import (
	"context"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	infraCache "github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

type Broadcaster interface {
	Broadcast(snapshot simulation.Snapshot)
}

type SnapshotUpdatedEventSubscriber struct {
	logger      *logrus.Logger
	broadcaster Broadcaster
	memoryCache *infraCache.TTLMap
}

func NewSnapshotUpdatedEventSubscriber(
	logger *logrus.Logger,
	c infraCache.Client,
	broadcaster Broadcaster,
) infraCache.EventSubscriber[event.SnapshotUpdatedEvent] {
	return &SnapshotUpdatedEventSubscriber{
		logger:      logger,
		broadcaster: broadcaster,
		memoryCache: c.GetTTLMap(infraCache.SnapshotTTLName),
	}
}

func (s SnapshotUpdatedEventSubscriber) OnEvent(_ context.Context, evt event.SnapshotUpdatedEvent) error {
	s.logger.WithFields(logrus.Fields{
		"run_id": evt.Snapshot.RunID,
		"state":  evt.Snapshot.State,
	}).Debug("snapshot received from channel")

	if s.memoryCache != nil && evt.Snapshot.RunID != "" {
		s.memoryCache.Set(evt.Snapshot.RunID, evt.Snapshot.Clone())
	}
	s.broadcaster.Broadcast(evt.Snapshot)
	return nil
}
