package simulation

import "time"

type Role string

const (
	RoleAttacker Role = "attacker"
	RoleDefender Role = "defender"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

type FlagType string

const (
	FlagJailbreakAttempt FlagType = "jailbreak_attempt"
	FlagPromptInjection  FlagType = "prompt_injection"
	FlagSafetyViolation  FlagType = "safety_violation"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type Flag struct {
	Type        FlagType `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Flag      *Flag     `json:"flag,omitempty"`
}
