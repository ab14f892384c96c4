package simulation

import "time"

type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
	RunStateTimedOut  RunState = "timed_out"
	RunStateCancelled RunState = "cancelled"
)

func (s RunState) IsTerminal() bool {
	return s != RunStateRunning && s != ""
}

// Snapshot is the read-only view model published after every processed frame.
type Snapshot struct {
	RunID      string    `json:"run_id,omitempty"`
	AgentID    string    `json:"agent_id,omitempty"`
	State      RunState  `json:"state,omitempty"`
	Error      string    `json:"error,omitempty"`
	Progress   float64   `json:"progress"`
	Stage      string    `json:"stage,omitempty"`
	Messages   []Message `json:"messages"`
	Stats      Stats     `json:"stats"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Clone returns a copy whose message slice and flags are not shared.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		for i, m := range s.Messages {
			if m.Flag != nil {
				f := *m.Flag
				m.Flag = &f
			}
			out.Messages[i] = m
		}
	}
	return out
}
