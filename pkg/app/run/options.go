package run

import (
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/prometheus"
)

const DefaultTimeout = 5 * time.Minute

type Option func(*runner)

// WithTimeout bounds the total duration of a run.
func WithTimeout(timeout time.Duration) Option {
	return func(r *runner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithPublishers(publishers ...Publisher) Option {
	return func(r *runner) {
		for _, p := range publishers {
			if p != nil {
				r.publishers = append(r.publishers, p)
			}
		}
	}
}

func WithSnapshotFinder(finder SnapshotFinder) Option {
	return func(r *runner) {
		r.finder = finder
	}
}

func WithRecorder(recorder prometheus.Recorder) Option {
	return func(r *runner) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *runner) {
		r.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(r *runner) {
		r.newID = newID
	}
}
