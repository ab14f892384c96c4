package hub

import "github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"

type MessageType string

const MessageTypeSnapshot MessageType = "snapshot"

// Message is what a websocket subscriber receives for every update.
type Message struct {
	Type     MessageType         `json:"type"`
	Snapshot simulation.Snapshot `json:"snapshot"`
}

func NewSnapshotMessage(snapshot simulation.Snapshot) Message {
	return Message{Type: MessageTypeSnapshot, Snapshot: snapshot}
}
