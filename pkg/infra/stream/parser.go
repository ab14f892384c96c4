package stream

import (
	"fmt"

	"github.com/NeuralTrust/TrustRedTeam/pkg/domain/simulation"
	"github.com/valyala/fastjson"
)

var historyKeys = []string{"conversation_history", "convesation_history"}

var parserPool fastjson.ParserPool

// ParseFrame normalizes one raw event payload into a Frame. Absent fields
// stay zero. Only a missing type, a mistyped conversation history or a
// mistyped evaluation result yield a ParseError; run metadata with an
// unexpected shape is ignored so terminal frames are never lost.
func ParseFrame(payload []byte) (simulation.Frame, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	root, err := p.ParseBytes(payload)
	if err != nil {
		return simulation.Frame{}, simulation.NewParseError(payload, "invalid json", err)
	}
	if root.Type() != fastjson.TypeObject {
		return simulation.Frame{}, simulation.NewParseError(payload, "frame is not an object", nil)
	}

	typ := root.Get("type")
	if typ == nil || typ.Type() != fastjson.TypeString {
		return simulation.Frame{}, simulation.NewParseError(payload, "missing type", nil)
	}
	frame := simulation.Frame{Type: simulation.FrameType(typ.GetStringBytes())}

	data := root.Get("data")
	if isAbsent(data) {
		return frame, nil
	}
	if data.Type() != fastjson.TypeObject {
		return frame, nil
	}

	parsed, err := parseData(data)
	if err != nil {
		return simulation.Frame{}, simulation.NewParseError(payload, err.Error(), nil)
	}
	frame.Data = parsed
	return frame, nil
}

func parseData(v *fastjson.Value) (*simulation.FrameData, error) {
	out := &simulation.FrameData{}

	for _, key := range historyKeys {
		history := v.Get(key)
		if isAbsent(history) {
			continue
		}
		exchanges, err := parseHistory(history)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out.HasHistory = true
		out.ConversationHistory = exchanges
		break
	}

	if evaluation := v.Get("evaluation_result"); !isAbsent(evaluation) {
		verdict, err := parseVerdict(evaluation)
		if err != nil {
			return nil, fmt.Errorf("evaluation_result: %w", err)
		}
		out.Evaluation = verdict
	}

	out.Error = errorText(v.Get("error"))
	out.State = metadataString(v, "state")
	out.AgentID = metadataString(v, "agent_id")
	if iteration := v.Get("current_iteration"); iteration != nil && iteration.Type() == fastjson.TypeNumber {
		out.CurrentIteration = int(iteration.GetFloat64())
	}

	return out, nil
}

func parseHistory(v *fastjson.Value) ([]simulation.Exchange, error) {
	items, err := v.Array()
	if err != nil {
		return nil, err
	}
	exchanges := make([]simulation.Exchange, 0, len(items))
	for i, item := range items {
		if item.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}
		attack, err := optionalString(item, "attack_prompt")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		defense, err := optionalString(item, "defense_message")
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		exchanges = append(exchanges, simulation.Exchange{AttackText: attack, DefenseText: defense})
	}
	return exchanges, nil
}

func parseVerdict(v *fastjson.Value) (*simulation.Verdict, error) {
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("not an object")
	}
	attack, err := optionalString(v, "attack_prompt")
	if err != nil {
		return nil, err
	}
	status, err := optionalString(v, "status")
	if err != nil {
		return nil, err
	}
	verdict := &simulation.Verdict{AttackText: attack, Status: status}
	if success := v.Get("success"); !isAbsent(success) {
		if verdict.Success, err = success.Bool(); err != nil {
			return nil, fmt.Errorf("success: %w", err)
		}
	}
	return verdict, nil
}

func optionalString(v *fastjson.Value, key string) (string, error) {
	field := v.Get(key)
	if isAbsent(field) {
		return "", nil
	}
	b, err := field.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return string(b), nil
}

// errorText reads the error detail of a frame. Non-string values are kept
// as their JSON text.
func errorText(v *fastjson.Value) string {
	if isAbsent(v) {
		return ""
	}
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return v.String()
}

func metadataString(v *fastjson.Value, key string) string {
	field := v.Get(key)
	if field == nil || field.Type() != fastjson.TypeString {
		return ""
	}
	return string(field.GetStringBytes())
}

func isAbsent(v *fastjson.Value) bool {
	return v == nil || v.Type() == fastjson.TypeNull
}
