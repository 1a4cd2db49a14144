package protocol

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	msg := RegisterTeam{Name: "Falcons"}
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	variant, decoded, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if variant != "RegisterTeam" {
		t.Fatalf("expected variant RegisterTeam, got %s", variant)
	}
	got, ok := decoded.(RegisterTeam)
	if !ok || got != msg {
		t.Fatalf("round trip mismatch: got %#v", decoded)
	}
}

func TestReadFrameRejectsOversizeLength(t *testing.T) {
	var buf bytes.Buffer
	header := []byte{0, 0, 0, 0}
	// 2 MiB, exceeds the 1 MiB cap.
	header[3] = 0x00
	header[2] = 0x20
	buf.Write(header)

	_, err := ReadFrame(&buf)
	if err == nil {
		t.Fatalf("expected an error for oversize frame length")
	}
	var msgErr *MessageError
	if !asMessageError(err, &msgErr) {
		t.Fatalf("expected *MessageError, got %T: %v", err, err)
	}
}

func asMessageError(err error, target **MessageError) bool {
	if me, ok := err.(*MessageError); ok {
		*target = me
		return true
	}
	return false
}

func TestRegistrationScenario(t *testing.T) {
	// Literal protocol scenario 6: two RegisterTeam frames for the same
	// name on separate connections; first succeeds, second is refused.
	var first, second bytes.Buffer
	tok := "AAAAAAAAAAAAAAAA"

	okResult := RegisterTeamResult{Ok: &RegisterTeamOk{ExpectedPlayers: 3, RegistrationToken: tok}}
	if err := WriteMessage(&first, okResult); err != nil {
		t.Fatal(err)
	}
	errVal := TeamAlreadyRegistered
	refused := RegisterTeamResult{Err: &errVal}
	if err := WriteMessage(&second, refused); err != nil {
		t.Fatal(err)
	}

	_, msg1, err := ReadMessage(&first)
	if err != nil {
		t.Fatal(err)
	}
	r1 := msg1.(RegisterTeamResult)
	if r1.Ok == nil || r1.Ok.RegistrationToken != tok {
		t.Fatalf("expected Ok result with token, got %#v", r1)
	}

	_, msg2, err := ReadMessage(&second)
	if err != nil {
		t.Fatal(err)
	}
	r2 := msg2.(RegisterTeamResult)
	if r2.Err == nil || *r2.Err != TeamAlreadyRegistered {
		t.Fatalf("expected TeamAlreadyRegistered, got %#v", r2)
	}
}
