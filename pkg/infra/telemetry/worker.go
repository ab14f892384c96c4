package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize     = 100
	DefaultExportTimeout = 10 * time.Second
)

var ErrQueueFull = errors.New("report export queue is full")

// Worker exports a report for every run that reaches a terminal state.
// It satisfies run.Publisher and never blocks the run read loop.
type Worker interface {
	Publish(ctx context.Context, snapshot simulation.Snapshot) error
	StartWorkers(n int)
	Shutdown()
}

type WorkerOption func(*worker)

func WithQueueSize(size int) WorkerOption {
	return func(w *worker) {
		if size > 0 {
			w.queueSize = size
		}
	}
}

func WithExportTimeout(timeout time.Duration) WorkerOption {
	return func(w *worker) {
		if timeout > 0 {
			w.exportTimeout = timeout
		}
	}
}

type worker struct {
	logger        *logrus.Logger
	exporters     []telemetry.Exporter
	queueSize     int
	exportTimeout time.Duration

	mu       sync.RWMutex
	closed   bool
	taskChan chan *telemetry.RunReport
	wg       sync.WaitGroup
}

func NewWorker(logger *logrus.Logger, exporters []telemetry.Exporter, opts ...WorkerOption) Worker {
	w := &worker{
		logger:        logger,
		exporters:     exporters,
		queueSize:     DefaultQueueSize,
		exportTimeout: DefaultExportTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.taskChan = make(chan *telemetry.RunReport, w.queueSize)
	return w
}

func (w *worker) Publish(_ context.Context, snapshot simulation.Snapshot) error {
	if !snapshot.State.IsTerminal() || len(w.exporters) == 0 {
		return nil
	}
	report := telemetry.NewRunReport(snapshot)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.taskChan <- report:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.logger.WithField("workers", n).Debug("starting report export workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for report := range w.taskChan {
				w.export(report)
			}
		}()
	}
}

// Shutdown drains queued reports and closes the exporters.
func (w *worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.taskChan)
	w.mu.Unlock()

	w.wg.Wait()
	for _, exporter := range w.exporters {
		exporter.Close()
	}
	w.logger.Info("report export workers stopped")
}

func (w *worker) export(report *telemetry.RunReport) {
	var failedExporters []string
	for _, exporter := range w.exporters {
		ctx, cancel := context.WithTimeout(context.Background(), w.exportTimeout)
		err := exporter.Handle(ctx, report)
		cancel()
		if err != nil {
			w.logger.WithFields(logrus.Fields{
				"run_id":   report.RunID,
				"exporter": exporter.Name(),
			}).WithError(err).Error("exporter failed")
			failedExporters = append(failedExporters, exporter.Name())
		}
	}
	if len(failedExporters) > 0 {
		w.logger.WithField("failedExporters", failedExporters).
			Warnf("%d exporters failed to handle run report", len(failedExporters))
	}
}
