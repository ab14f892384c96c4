package simulation

// RunRequest carries what the simulation backend needs to start a run.
type RunRequest struct {
	AgentID             string `json:"-"`
	Iterations          int    `json:"iterations"`
	InitialAttackPrompt string `json:"initial_attack_prompt"`
	DefenseSystemPrompt string `json:"defense_system_prompt"`
}
