package prometheus

import (
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

// Recorder is the run driver's view of the metrics above.
type Recorder interface {
	RunStarted()
	RunFinished(snapshot simulation.Snapshot, duration time.Duration)
	FrameProcessed(frameType simulation.FrameType)
	FrameDropped()
}

type recorder struct{}

func NewRecorder() Recorder {
	return recorder{}
}

func (recorder) RunStarted() {
	if !Config.EnableRunMetrics {
		return
	}
	ActiveRuns.Inc()
}

func (recorder) RunFinished(snapshot simulation.Snapshot, duration time.Duration) {
	if !Config.EnableRunMetrics {
		return
	}
	ActiveRuns.Dec()
	state := string(snapshot.State)
	RunsTotal.WithLabelValues(state).Inc()
	RunDuration.WithLabelValues(state).Observe(duration.Seconds())
	SuccessfulJailbreaks.Add(float64(snapshot.Stats.SuccessfulJailbreaks))
}

func (recorder) FrameProcessed(frameType simulation.FrameType) {
	if !Config.EnableFrameMetrics {
		return
	}
	label := string(frameType)
	switch frameType {
	case simulation.FrameTypeMessage, simulation.FrameTypeComplete, simulation.FrameTypeError:
	default:
		// keep label cardinality bounded
		label = "other"
	}
	FramesTotal.WithLabelValues(label).Inc()
}

func (recorder) FrameDropped() {
	if !Config.EnableFrameMetrics {
		return
	}
	FramesDroppedTotal.Inc()
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) RunStarted()                                    {}
func (NoopRecorder) RunFinished(simulation.Snapshot, time.Duration) {}
func (NoopRecorder) FrameProcessed(simulation.FrameType)            {}
func (NoopRecorder) FrameDropped()                                  {}
