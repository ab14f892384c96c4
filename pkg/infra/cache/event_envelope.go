package cache

import (
	"encoding/json"
)

// EventEnvelope is the pub/sub wire form of a run event. Type selects the
// registry entry that decodes Event.
type EventEnvelope struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}
