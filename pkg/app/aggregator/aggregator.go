package aggregator

import (
	"math"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

const estimatedProgressCap = 95.0

// Aggregator owns the two accumulators of a single run and rebuilds the
// whole view model from them on every change. It is not safe for concurrent
// use; one read loop drives it.
type Aggregator struct {
	origin     time.Time
	iterations int

	history  []simulation.Exchange
	verdicts []simulation.Verdict

	currentIteration int
	stage            string
	agentID          string
	completed        bool

	messages []simulation.Message
	stats    simulation.Stats
}

type Option func(*Aggregator)

// WithOrigin fixes the instant synthesized message timestamps start from.
func WithOrigin(origin time.Time) Option {
	return func(a *Aggregator) {
		a.origin = origin
	}
}

// WithIterations sets the requested iteration count used for progress.
func WithIterations(iterations int) Option {
	return func(a *Aggregator) {
		a.iterations = iterations
	}
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		origin:   time.Now().UTC(),
		messages: []simulation.Message{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reset drops everything accumulated so far. Options are kept.
func (a *Aggregator) Reset() {
	a.history = nil
	a.verdicts = nil
	a.currentIteration = 0
	a.stage = ""
	a.agentID = ""
	a.completed = false
	a.messages = []simulation.Message{}
	a.stats = simulation.Stats{}
}

// ProcessFrame merges one frame into the accumulators and returns the
// recomputed view model.
func (a *Aggregator) ProcessFrame(frame simulation.Frame) simulation.Snapshot {
	changed := false

	if data := frame.Data; data != nil {
		if data.HasHistory {
			a.history = append(make([]simulation.Exchange, 0, len(data.ConversationHistory)), data.ConversationHistory...)
			changed = true
		}
		if data.Evaluation != nil {
			a.verdicts = append(a.verdicts, *data.Evaluation)
			changed = true
		}
		if data.CurrentIteration > 0 {
			a.currentIteration = data.CurrentIteration
		}
		if data.State != "" {
			a.stage = data.State
		}
		if data.AgentID != "" {
			a.agentID = data.AgentID
		}
	}

	if frame.Type == simulation.FrameTypeComplete {
		a.completed = true
	}

	if changed {
		a.recompute()
	}
	return a.Snapshot()
}

func (a *Aggregator) recompute() {
	a.messages = BuildMessages(a.history, a.verdicts, a.origin)
	a.stats = CalculateStats(a.messages)
}

// Snapshot returns a copy of the current view model.
func (a *Aggregator) Snapshot() simulation.Snapshot {
	return simulation.Snapshot{
		AgentID:  a.agentID,
		Stage:    a.stage,
		Progress: a.progress(),
		Messages: a.messages,
		Stats:    a.stats,
	}.Clone()
}

func (a *Aggregator) progress() float64 {
	switch {
	case a.completed:
		return 100
	case a.iterations <= 0:
		return 0
	case a.currentIteration > 0:
		return math.Min(float64(a.currentIteration)/float64(a.iterations)*100, 100)
	default:
		return math.Min(float64(a.stats.TotalExchanges)/float64(a.iterations)*100, estimatedProgressCap)
	}
}
