package simulation

type FrameType string

const (
	FrameTypeMessage  FrameType = "message"
	FrameTypeComplete FrameType = "complete"
	FrameTypeError    FrameType = "error"
)

// Exchange is one attack/defense turn as resent by the simulation backend.
// Either side may be empty while the turn is still in progress.
type Exchange struct {
	AttackText  string `json:"attack_prompt,omitempty"`
	DefenseText string `json:"defense_message,omitempty"`
}

// Verdict is the evaluator's judgment on one exchange. It is correlated to
// an Exchange by exact equality of AttackText.
type Verdict struct {
	AttackText string `json:"attack_prompt,omitempty"`
	Success    bool   `json:"success"`
	Status     string `json:"status,omitempty"`
}

// Frame is the canonical shape of one stream event after normalization.
type Frame struct {
	Type FrameType
	Data *FrameData
}

type FrameData struct {
	// HasHistory distinguishes an absent history from an empty one.
	HasHistory          bool
	ConversationHistory []Exchange
	Evaluation          *Verdict
	Error               string
	CurrentIteration    int
	State               string
	AgentID             string
}

func (f Frame) IsTerminal() bool {
	return f.Type == FrameTypeComplete || f.Type == FrameTypeError
}

// ErrorMessage returns the protocol error carried by an error frame.
func (f Frame) ErrorMessage() string {
	if f.Data == nil || f.Data.Error == "" {
		return "Unknown error"
	}
	return f.Data.Error
}
