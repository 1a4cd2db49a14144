package protocol

import (
	"encoding/json"
	"fmt"
)

// Direction is one of the four relative/absolute facings used both as a
// turn and as a movement request.
type Direction string

const (
	Front Direction = "Front"
	Right Direction = "Right"
	Back  Direction = "Back"
	Left  Direction = "Left"
)

// Turn composes two directions the way a 90-degree rotation would: Dir
// interpreted as a turn relative to the agent's current facing d.
func (d Direction) Turn(turn Direction) Direction {
	order := [4]Direction{Front, Right, Back, Left}
	idx := map[Direction]int{Front: 0, Right: 1, Back: 2, Left: 3}
	return order[(idx[d]+idx[turn])%4]
}

// RegistrationError enumerates why the server refused a RegisterTeam or
// SubscribePlayer request.
type RegistrationError string

const (
	InvalidName              RegistrationError = "InvalidName"
	TeamAlreadyRegistered    RegistrationError = "TeamAlreadyRegistered"
	AlreadyRegistered        RegistrationError = "AlreadyRegistered"
	TooManyPlayers           RegistrationError = "TooManyPlayers"
	InvalidRegistrationToken RegistrationError = "InvalidRegistrationToken"
	ServerError              RegistrationError = "ServerError"
)

// ActionErrorKind enumerates why the server refused an Action.
type ActionErrorKind string

const (
	InvalidMove               ActionErrorKind = "InvalidMove"
	OutOfMap                  ActionErrorKind = "OutOfMap"
	Blocked                   ActionErrorKind = "Blocked"
	InvalidChallengeSolution  ActionErrorKind = "InvalidChallengeSolution"
	SolveChallengeFirst       ActionErrorKind = "SolveChallengeFirst"
	CannotPassThroughOpponent ActionErrorKind = "CannotPassThroughOpponent"
)

// RegisterTeam is sent client-to-server to claim a team name.
type RegisterTeam struct {
	Name string `json:"name"`
}

// RegisterTeamOk is the successful payload of a RegisterTeamResult.
type RegisterTeamOk struct {
	ExpectedPlayers   int    `json:"expected_players"`
	RegistrationToken string `json:"registration_token"`
}

// RegisterTeamResult answers a RegisterTeam request.
type RegisterTeamResult struct {
	Ok  *RegisterTeamOk
	Err *RegistrationError
}

func (r RegisterTeamResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]any{"Err": *r.Err})
	}
	return json.Marshal(map[string]any{"Ok": r.Ok})
}

func (r *RegisterTeamResult) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("protocol: RegisterTeamResult: %w", err)
	}
	if raw, ok := obj["Ok"]; ok {
		var ok2 RegisterTeamOk
		if err := json.Unmarshal(raw, &ok2); err != nil {
			return err
		}
		r.Ok = &ok2
		return nil
	}
	if raw, ok := obj["Err"]; ok {
		var e RegistrationError
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		r.Err = &e
		return nil
	}
	return fmt.Errorf("protocol: RegisterTeamResult: missing Ok/Err key")
}

// SubscribePlayer is sent client-to-server to join a registered team.
type SubscribePlayer struct {
	Name              string `json:"name"`
	RegistrationToken string `json:"registration_token"`
}

// SubscribePlayerResult answers a SubscribePlayer request. The success
// case is the bare string "Ok" on the wire, not an object.
type SubscribePlayerResult struct {
	Ok  bool
	Err *RegistrationError
}

func (r SubscribePlayerResult) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]any{"Err": *r.Err})
	}
	return json.Marshal("Ok")
}

func (r *SubscribePlayerResult) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare != "Ok" {
			return fmt.Errorf("protocol: SubscribePlayerResult: unexpected bare value %q", bare)
		}
		r.Ok = true
		return nil
	}
	var obj map[string]RegistrationError
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("protocol: SubscribePlayerResult: %w", err)
	}
	e, ok := obj["Err"]
	if !ok {
		return fmt.Errorf("protocol: SubscribePlayerResult: missing Err key")
	}
	r.Err = &e
	return nil
}

// RadarView carries the base-64-encoded 11-byte radar payload.
type RadarView struct {
	Payload string
}

func (r RadarView) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload)
}

func (r *RadarView) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Payload)
}

// Action is sent client-to-server: either a movement request or a
// challenge answer.
type Action struct {
	MoveTo        *Direction
	SolveChallenge *SolveChallengeAction
}

// SolveChallengeAction carries the decimal-rendered modular-sum answer.
type SolveChallengeAction struct {
	Answer string `json:"answer"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	if a.SolveChallenge != nil {
		return json.Marshal(map[string]any{"SolveChallenge": a.SolveChallenge})
	}
	if a.MoveTo != nil {
		return json.Marshal(map[string]any{"MoveTo": *a.MoveTo})
	}
	return nil, fmt.Errorf("protocol: empty Action")
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("protocol: Action: %w", err)
	}
	if raw, ok := obj["MoveTo"]; ok {
		var d Direction
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		a.MoveTo = &d
		return nil
	}
	if raw, ok := obj["SolveChallenge"]; ok {
		var sc SolveChallengeAction
		if err := json.Unmarshal(raw, &sc); err != nil {
			return err
		}
		a.SolveChallenge = &sc
		return nil
	}
	return fmt.Errorf("protocol: Action: unknown variant")
}

// ActionError reports why the server refused an Action.
type ActionError struct {
	Kind ActionErrorKind
}

func (a ActionError) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Kind)
}

func (a *ActionError) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &a.Kind)
}

// Hint is a server-to-client nudge: a relative-compass bearing, the
// grid dimensions, a secret share, or the legacy "SOS" unit variant.
type Hint struct {
	RelativeCompass *HintRelativeCompass
	GridSize        *HintGridSize
	Secret          *U128
	SOS             bool
}

// HintRelativeCompass gives the angle, in degrees, from the agent to the
// goal, relative to the agent's current facing.
type HintRelativeCompass struct {
	Angle float64 `json:"angle"`
}

// HintGridSize announces the maze's overall dimensions.
type HintGridSize struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

func (h Hint) MarshalJSON() ([]byte, error) {
	switch {
	case h.RelativeCompass != nil:
		return json.Marshal(map[string]any{"RelativeCompass": h.RelativeCompass})
	case h.GridSize != nil:
		return json.Marshal(map[string]any{"GridSize": h.GridSize})
	case h.Secret != nil:
		return json.Marshal(map[string]any{"Secret": *h.Secret})
	case h.SOS:
		return json.Marshal("SOS")
	default:
		return nil, fmt.Errorf("protocol: empty Hint")
	}
}

func (h *Hint) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		if bare != "SOS" {
			return fmt.Errorf("protocol: Hint: unexpected bare value %q", bare)
		}
		h.SOS = true
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("protocol: Hint: %w", err)
	}
	switch {
	case obj["RelativeCompass"] != nil:
		var v HintRelativeCompass
		if err := json.Unmarshal(obj["RelativeCompass"], &v); err != nil {
			return err
		}
		h.RelativeCompass = &v
	case obj["GridSize"] != nil:
		var v HintGridSize
		if err := json.Unmarshal(obj["GridSize"], &v); err != nil {
			return err
		}
		h.GridSize = &v
	case obj["Secret"] != nil:
		var v U128
		if err := json.Unmarshal(obj["Secret"], &v); err != nil {
			return err
		}
		h.Secret = &v
	default:
		return fmt.Errorf("protocol: Hint: unknown variant")
	}
	return nil
}

// Challenge asks the team to return (sum of secrets) mod Modulus.
type Challenge struct {
	SecretSumModulo U128
}

func (c Challenge) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"SecretSumModulo": c.SecretSumModulo})
}

func (c *Challenge) UnmarshalJSON(data []byte) error {
	var obj map[string]U128
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("protocol: Challenge: %w", err)
	}
	v, ok := obj["SecretSumModulo"]
	if !ok {
		return fmt.Errorf("protocol: Challenge: missing SecretSumModulo")
	}
	c.SecretSumModulo = v
	return nil
}

// MessageErrorPayload is sent by either side to report a malformed or
// unexpected message on the wire.
type MessageErrorPayload struct {
	Message string `json:"message"`
}
