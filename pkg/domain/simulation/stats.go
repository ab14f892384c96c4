package simulation

type AttackTypes struct {
	JailbreakAttempts int `json:"jailbreak_attempts"`
	PromptInjection   int `json:"prompt_injection"`
	RolePlaying       int `json:"role_playing"`
}

type ThreatLevels struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type Stats struct {
	TotalExchanges       int          `json:"total_exchanges"`
	SuccessfulJailbreaks int          `json:"successful_jailbreaks"`
	SuccessRate          float64      `json:"success_rate"`
	AttackTypes          AttackTypes  `json:"attack_types"`
	ThreatLevels         ThreatLevels `json:"threat_levels"`
}
