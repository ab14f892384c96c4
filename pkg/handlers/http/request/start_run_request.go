package request

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

const (
	MinIterations = 1
	MaxIterations = 100
)

type StartRunRequest struct {
	AgentID             string `json:"agent_id"`
	Iterations          *int   `json:"iterations,omitempty"`
	InitialAttackPrompt string `json:"initial_attack_prompt"`
	DefenseSystemPrompt string `json:"defense_system_prompt,omitempty"`
}

// Defaults fill the optional fields of a StartRunRequest.
type Defaults struct {
	Iterations          int
	DefenseSystemPrompt string
}

func (r *StartRunRequest) Validate() error {
	if strings.TrimSpace(r.AgentID) == "" {
		return fmt.Errorf("agent_id is required")
	}
	if strings.ContainsAny(r.AgentID, "/?#") {
		return fmt.Errorf("agent_id must not contain '/', '?' or '#'")
	}
	if strings.TrimSpace(r.InitialAttackPrompt) == "" {
		return fmt.Errorf("initial_attack_prompt is required")
	}
	if r.Iterations != nil && (*r.Iterations < MinIterations || *r.Iterations > MaxIterations) {
		return fmt.Errorf("iterations must be between %d and %d", MinIterations, MaxIterations)
	}
	return nil
}

func (r *StartRunRequest) ToRunRequest(defaults Defaults) simulation.RunRequest {
	out := simulation.RunRequest{
		AgentID:             strings.TrimSpace(r.AgentID),
		Iterations:          defaults.Iterations,
		InitialAttackPrompt: r.InitialAttackPrompt,
		DefenseSystemPrompt: r.DefenseSystemPrompt,
	}
	if r.Iterations != nil {
		out.Iterations = *r.Iterations
	}
	if strings.TrimSpace(out.DefenseSystemPrompt) == "" {
		out.DefenseSystemPrompt = defaults.DefenseSystemPrompt
	}
	return out
}
