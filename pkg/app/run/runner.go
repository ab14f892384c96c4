package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/app/aggregator"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/simclient"
	"github.com/NeuralTrust/TrustRedTeam/pkg/infra/stream"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout    = 5 * time.Second
	maxLoggedPayload  = 256
	failedPrefix      = "Simulation failed: "
	interruptedReason = "stream interrupted"
)

//go:generate mockery --name=Runner --dir=. --output=./mocks --filename=runner_mock.go --case=underscore --with-expecter
type Runner interface {
	// Start launches a run unless one is already active, in which case the
	// active run's snapshot is returned with started == false.
	Start(ctx context.Context, req simulation.RunRequest) (snapshot simulation.Snapshot, started bool, err error)
	// Stop cancels the active run and waits for it to release the stream.
	Stop(ctx context.Context) error
	// Current returns the snapshot of the active run, or of the last one.
	Current() (simulation.Snapshot, bool)
	Get(ctx context.Context, runID string) (simulation.Snapshot, error)
}

type activeRun struct {
	id       string
	req      simulation.RunRequest
	started  time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	snapshot simulation.Snapshot
}

type runner struct {
	opener     simclient.StreamOpener
	logger     *logrus.Logger
	publishers []Publisher
	finder     SnapshotFinder
	metrics    prometheus.Recorder
	timeout    time.Duration
	now        func() time.Time
	newID      func() string

	mu     sync.Mutex
	active *activeRun
	last   *simulation.Snapshot
}

func NewRunner(opener simclient.StreamOpener, logger *logrus.Logger, opts ...Option) Runner {
	r := &runner{
		opener:  opener,
		logger:  logger,
		metrics: prometheus.NoopRecorder{},
		timeout: DefaultTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *runner) Start(ctx context.Context, req simulation.RunRequest) (simulation.Snapshot, bool, error) {
	r.mu.Lock()
	if r.active != nil {
		snapshot := r.active.snapshot.Clone()
		r.mu.Unlock()
		return snapshot, false, nil
	}

	started := r.now()
	stopCtx, cancel := context.WithCancel(context.Background())
	run := &activeRun{
		id:      r.newID(),
		req:     req,
		started: started,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	run.snapshot = simulation.Snapshot{
		RunID:     run.id,
		AgentID:   req.AgentID,
		State:     simulation.RunStateRunning,
		Messages:  []simulation.Message{},
		StartedAt: started,
	}
	r.active = run
	snapshot := run.snapshot.Clone()
	r.mu.Unlock()

	agg := aggregator.New(
		aggregator.WithOrigin(started),
		aggregator.WithIterations(req.Iterations),
	)

	r.logger.WithFields(logrus.Fields{
		"run_id":     run.id,
		"agent_id":   req.AgentID,
		"iterations": req.Iterations,
	}).Info("simulation run started")
	r.metrics.RunStarted()
	r.publish(snapshot)

	go r.consume(stopCtx, run, agg)

	return snapshot, true, nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	run := r.active
	r.mu.Unlock()
	if run == nil {
		return simulation.ErrNoActiveRun
	}

	run.cancel()
	select {
	case <-run.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *runner) Current() (simulation.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return r.active.snapshot.Clone(), true
	}
	if r.last != nil {
		return r.last.Clone(), true
	}
	return simulation.Snapshot{}, false
}

func (r *runner) Get(ctx context.Context, runID string) (simulation.Snapshot, error) {
	r.mu.Lock()
	if r.active != nil && r.active.id == runID {
		snapshot := r.active.snapshot.Clone()
		r.mu.Unlock()
		return snapshot, nil
	}
	if r.last != nil && r.last.RunID == runID {
		snapshot := r.last.Clone()
		r.mu.Unlock()
		return snapshot, nil
	}
	r.mu.Unlock()

	if r.finder == nil {
		return simulation.Snapshot{}, simulation.ErrRunNotFound
	}
	return r.finder.Get(ctx, runID)
}

// consume drives one run to a terminal state. The stream is released
// before the terminal snapshot becomes visible.
func (r *runner) consume(stopCtx context.Context, run *activeRun, agg *aggregator.Aggregator) {
	defer close(run.done)
	defer run.cancel()

	snapshot, state, msg := r.read(stopCtx, run, agg)
	r.finish(run, snapshot, state, msg)
}

func (r *runner) read(
	stopCtx context.Context,
	run *activeRun,
	agg *aggregator.Aggregator,
) (simulation.Snapshot, simulation.RunState, string) {
	ctx, cancel := context.WithTimeout(stopCtx, r.timeout)
	defer cancel()

	body, err := r.opener.OpenStream(ctx, run.req)
	if err != nil {
		state, msg := r.classify(stopCtx, ctx, failedPrefix+transportMessage(err))
		return agg.Snapshot(), state, msg
	}
	closer := &onceCloser{rc: body}
	defer closer.Close() //nolint:errcheck
	// unblocks a read that is waiting on the backend
	stopClosing := context.AfterFunc(ctx, func() { _ = closer.Close() })
	defer stopClosing()

	decoder := stream.NewDecoder(body)
	for {
		payload, err := decoder.Next()
		if err != nil {
			if ctx.Err() == nil {
				if errors.Is(err, io.EOF) {
					return agg.Snapshot(), simulation.RunStateCompleted, ""
				}
				r.logger.WithError(err).WithField("run_id", run.id).Warn("simulation stream interrupted")
			}
			state, msg := r.classify(stopCtx, ctx, failedPrefix+interruptedReason)
			return agg.Snapshot(), state, msg
		}
		if ctx.Err() != nil {
			state, msg := r.classify(stopCtx, ctx, failedPrefix+interruptedReason)
			return agg.Snapshot(), state, msg
		}

		frame, err := stream.ParseFrame(payload)
		if err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"run_id":  run.id,
				"payload": truncate(payload, maxLoggedPayload),
			}).Warn("dropping malformed stream frame")
			r.metrics.FrameDropped()
			continue
		}
		r.metrics.FrameProcessed(frame.Type)

		snapshot := agg.ProcessFrame(frame)
		switch frame.Type {
		case simulation.FrameTypeComplete:
			return snapshot, simulation.RunStateCompleted, ""
		case simulation.FrameTypeError:
			return snapshot, simulation.RunStateFailed, failedPrefix + frame.ErrorMessage()
		}
		r.update(run, snapshot)
	}
}

// classify decides the terminal state once reading stopped early.
func (r *runner) classify(stopCtx, ctx context.Context, failure string) (simulation.RunState, string) {
	switch {
	case stopCtx.Err() != nil:
		return simulation.RunStateCancelled, ""
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return simulation.RunStateTimedOut, timeoutMessage(r.timeout)
	default:
		return simulation.RunStateFailed, failure
	}
}

func (r *runner) update(run *activeRun, snapshot simulation.Snapshot) {
	r.decorate(run, &snapshot, simulation.RunStateRunning, "")

	r.mu.Lock()
	run.snapshot = snapshot
	r.mu.Unlock()

	r.publish(snapshot.Clone())
}

func (r *runner) finish(run *activeRun, snapshot simulation.Snapshot, state simulation.RunState, msg string) {
	r.decorate(run, &snapshot, state, msg)
	snapshot.FinishedAt = r.now()
	if snapshot.FinishedAt.Before(run.started) {
		snapshot.FinishedAt = run.started
	}

	r.mu.Lock()
	run.snapshot = snapshot
	last := snapshot.Clone()
	r.last = &last
	if r.active == run {
		r.active = nil
	}
	r.mu.Unlock()

	duration := snapshot.FinishedAt.Sub(run.started)
	fields := logrus.Fields{
		"run_id":                run.id,
		"state":                 state,
		"duration":              duration.String(),
		"total_exchanges":       snapshot.Stats.TotalExchanges,
		"successful_jailbreaks": snapshot.Stats.SuccessfulJailbreaks,
	}
	if state == simulation.RunStateFailed || state == simulation.RunStateTimedOut {
		r.logger.WithFields(fields).WithField("error", msg).Warn("simulation run ended")
	} else {
		r.logger.WithFields(fields).Info("simulation run ended")
	}

	r.metrics.RunFinished(snapshot, duration)
	r.publish(snapshot.Clone())
}

func (r *runner) decorate(run *activeRun, snapshot *simulation.Snapshot, state simulation.RunState, msg string) {
	snapshot.RunID = run.id
	snapshot.State = state
	snapshot.Error = msg
	snapshot.StartedAt = run.started
	if snapshot.AgentID == "" {
		snapshot.AgentID = run.req.AgentID
	}
}

func (r *runner) publish(snapshot simulation.Snapshot) {
	if len(r.publishers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	for _, p := range r.publishers {
		if err := p.Publish(ctx, snapshot); err != nil {
			r.logger.WithError(err).WithField("run_id", snapshot.RunID).Warn("failed to publish snapshot")
		}
	}
}

func transportMessage(err error) string {
	var transportErr *simulation.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}
	return err.Error()
}

func timeoutMessage(timeout time.Duration) string {
	if timeout >= time.Minute && timeout%time.Minute == 0 {
		minutes := int(timeout / time.Minute)
		if minutes == 1 {
			return "Simulation timed out after 1 minute"
		}
		return fmt.Sprintf("Simulation timed out after %d minutes", minutes)
	}
	return fmt.Sprintf("Simulation timed out after %s", timeout)
}

func truncate(payload []byte, max int) string {
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max]) + "..."
}

type onceCloser struct {
	rc   io.Closer
	once sync.Once
	err  error
}

func (c *onceCloser) Close() error {
	c.once.Do(func() {
		c.err = c.rc.Close()
	})
	return c.err
}
