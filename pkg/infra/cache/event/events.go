package event

import "reflect"

type Event interface {
	Type() string
}

var SnapshotUpdatedEventType = "SnapshotUpdatedEvent"

var Registry = map[string]reflect.Type{
	SnapshotUpdatedEventType: reflect.TypeOf(SnapshotUpdatedEvent{}),
}
