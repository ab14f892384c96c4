package event

import "github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"

type SnapshotUpdatedEvent struct {
	Snapshot simulation.Snapshot `json:"snapshot"`
}

func (e SnapshotUpdatedEvent) Type() string {
	return SnapshotUpdatedEventType
}
