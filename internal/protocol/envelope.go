package protocol

import (
	"encoding/json"
	"fmt"
)

// Wrap produces the externally-tagged {"<Variant>": <payload>} envelope
// for a concrete message value. The variant name is taken from the
// message's Go type.
func Wrap(msg any) (json.RawMessage, error) {
	variant, err := variantName(msg)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return json.Marshal(map[string]json.RawMessage{variant: payload})
}

func variantName(msg any) (string, error) {
	switch msg.(type) {
	case RegisterTeam, *RegisterTeam:
		return "RegisterTeam", nil
	case RegisterTeamResult, *RegisterTeamResult:
		return "RegisterTeamResult", nil
	case SubscribePlayer, *SubscribePlayer:
		return "SubscribePlayer", nil
	case SubscribePlayerResult, *SubscribePlayerResult:
		return "SubscribePlayerResult", nil
	case RadarView, *RadarView:
		return "RadarView", nil
	case Action, *Action:
		return "Action", nil
	case ActionError, *ActionError:
		return "ActionError", nil
	case Hint, *Hint:
		return "Hint", nil
	case Challenge, *Challenge:
		return "Challenge", nil
	case MessageErrorPayload, *MessageErrorPayload:
		return "MessageError", nil
	default:
		return "", fmt.Errorf("protocol: unknown message type %T", msg)
	}
}

// Unwrap inspects an externally-tagged frame body and returns the
// variant name together with the decoded concrete message value.
func Unwrap(body []byte) (string, any, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", nil, &MessageError{Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}
	if len(obj) != 1 {
		return "", nil, &MessageError{Reason: fmt.Sprintf("expected exactly one top-level key, got %d", len(obj))}
	}
	var variant string
	var raw json.RawMessage
	for k, v := range obj {
		variant, raw = k, v
	}

	var (
		msg any
		err error
	)
	switch variant {
	case "RegisterTeam":
		var m RegisterTeam
		err = json.Unmarshal(raw, &m)
		msg = m
	case "RegisterTeamResult":
		var m RegisterTeamResult
		err = json.Unmarshal(raw, &m)
		msg = m
	case "SubscribePlayer":
		var m SubscribePlayer
		err = json.Unmarshal(raw, &m)
		msg = m
	case "SubscribePlayerResult":
		var m SubscribePlayerResult
		err = json.Unmarshal(raw, &m)
		msg = m
	case "RadarView":
		var m RadarView
		err = json.Unmarshal(raw, &m)
		msg = m
	case "Action":
		var m Action
		err = json.Unmarshal(raw, &m)
		msg = m
	case "ActionError":
		var m ActionError
		err = json.Unmarshal(raw, &m)
		msg = m
	case "Hint":
		var m Hint
		err = json.Unmarshal(raw, &m)
		msg = m
	case "Challenge":
		var m Challenge
		err = json.Unmarshal(raw, &m)
		msg = m
	case "MessageError":
		var m MessageErrorPayload
		err = json.Unmarshal(raw, &m)
		msg = m
	case "Hello", "Welcome":
		return "", nil, &MessageError{Reason: fmt.Sprintf("variant %q is a deprecated legacy handshake message and is not accepted", variant)}
	default:
		return "", nil, &MessageError{Reason: fmt.Sprintf("unknown message variant %q", variant)}
	}
	if err != nil {
		return "", nil, &SerializationError{Err: fmt.Errorf("variant %s: %w", variant, err)}
	}
	return variant, msg, nil
}
