package run

import (
	"context"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

//go:generate mockery --name=Publisher --dir=. --output=./mocks --filename=publisher_mock.go --case=underscore --with-expecter
type Publisher interface {
	Publish(ctx context.Context, snapshot simulation.Snapshot) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, snapshot simulation.Snapshot) error

func (f PublisherFunc) Publish(ctx context.Context, snapshot simulation.Snapshot) error {
	return f(ctx, snapshot)
}

// SnapshotFinder looks up snapshots of runs that are no longer held in memory.
type SnapshotFinder interface {
	Get(ctx context.Context, runID string) (simulation.Snapshot, error)
}
