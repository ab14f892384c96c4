package aggregator

import (
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
)

const (
	exchangeSpacing = 5 * time.Second
	defenseOffset   = 2 * time.Second
)

// BuildMessages turns the full conversation history into chat messages,
// resolving each attacker status against the verdicts collected so far.
// Timestamps are synthesized from origin since the feed carries no clock.
func BuildMessages(
	history []simulation.Exchange,
	verdicts []simulation.Verdict,
	origin time.Time,
) []simulation.Message {
	messages := make([]simulation.Message, 0, len(history)*2)
	seq := 0
	currentAttack := ""

	for i, exchange := range history {
		base := origin.Add(time.Duration(i) * exchangeSpacing)

		if exchange.AttackText != "" {
			currentAttack = exchange.AttackText
			status := simulation.StatusPending
			if verdict, ok := findVerdict(verdicts, exchange.AttackText); ok {
				status = simulation.StatusFailed
				if verdict.Success {
					status = simulation.StatusSuccess
				}
			}
			messages = append(messages, simulation.Message{
				ID:        fmt.Sprintf("attack-%d", seq),
				Role:      simulation.RoleAttacker,
				Content:   exchange.AttackText,
				Timestamp: base,
				Status:    status,
				Flag:      DetectFlag(exchange.AttackText),
			})
			seq++
		}

		if exchange.DefenseText != "" {
			// the defense holds until a verdict says the attack got through
			status := simulation.StatusSuccess
			if verdict, ok := findVerdict(verdicts, currentAttack); ok && verdict.Success {
				status = simulation.StatusFailed
			}
			messages = append(messages, simulation.Message{
				ID:        fmt.Sprintf("defense-%d", seq),
				Role:      simulation.RoleDefender,
				Content:   exchange.DefenseText,
				Timestamp: base.Add(defenseOffset),
				Status:    status,
			})
			seq++
		}
	}

	return messages
}

func findVerdict(verdicts []simulation.Verdict, attackText string) (simulation.Verdict, bool) {
	if attackText == "" {
		return simulation.Verdict{}, false
	}
	for _, v := range verdicts {
		if v.AttackText == attackText {
			return v, true
		}
	}
	return simulation.Verdict{}, false
}
