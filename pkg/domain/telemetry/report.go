package telemetry

import (
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

const ReportType = "redteam_run"

// RunReport is the exported summary of a finished simulation run.
type RunReport struct {
	Type       string               `json:"type"`
	RunID      string               `json:"run_id"`
	AgentID    string               `json:"agent_id,omitempty"`
	State      simulation.RunState  `json:"state"`
	Error      string               `json:"error,omitempty"`
	StartedAt  int64                `json:"start_timestamp"`
	FinishedAt int64                `json:"end_timestamp"`
	DurationMs int64                `json:"duration_ms"`
	Stats      simulation.Stats     `json:"stats"`
	Flags      map[string]int       `json:"flags,omitempty"`
	Transcript []simulation.Message `json:"transcript"`
}

func NewRunReport(snapshot simulation.Snapshot) *RunReport {
	report := &RunReport{
		Type:       ReportType,
		RunID:      snapshot.RunID,
		AgentID:    snapshot.AgentID,
		State:      snapshot.State,
		Error:      snapshot.Error,
		Stats:      snapshot.Stats,
		Transcript: snapshot.Clone().Messages,
	}
	if !snapshot.StartedAt.IsZero() {
		report.StartedAt = snapshot.StartedAt.Unix()
	}
	if !snapshot.FinishedAt.IsZero() {
		report.FinishedAt = snapshot.FinishedAt.Unix()
		report.DurationMs = snapshot.FinishedAt.Sub(snapshot.StartedAt).Milliseconds()
	}
	if report.Transcript == nil {
		report.Transcript = []simulation.Message{}
	}
	for _, m := range snapshot.Messages {
		if m.Flag == nil {
			continue
		}
		if report.Flags == nil {
			report.Flags = make(map[string]int)
		}
		report.Flags[string(m.Flag.Type)]++
	}
	return report
}

// Duration is the wall time of the run, zero when it never finished.
func (r *RunReport) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}
