package protocol

import (
	"math/big"
	"testing"
)

func TestActionMoveToRoundTrip(t *testing.T) {
	dir := Right
	raw, err := Wrap(Action{MoveTo: &dir})
	if err != nil {
		t.Fatal(err)
	}
	variant, msg, err := Unwrap(raw)
	if err != nil {
		t.Fatal(err)
	}
	if variant != "Action" {
		t.Fatalf("expected Action, got %s", variant)
	}
	a := msg.(Action)
	if a.MoveTo == nil || *a.MoveTo != Right {
		t.Fatalf("expected MoveTo(Right), got %#v", a)
	}
}

func TestHintSecretAndSOS(t *testing.T) {
	secret := U128FromUint64(42)
	raw, err := Wrap(Hint{Secret: &secret})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"Hint":42}` {
		t.Fatalf("unexpected wire form: %s", raw)
	}
	_, msg, err := Unwrap(raw)
	if err != nil {
		t.Fatal(err)
	}
	h := msg.(Hint)
	if h.Secret == nil || h.Secret.String() != "42" {
		t.Fatalf("expected secret 42, got %#v", h)
	}

	rawSOS, err := Wrap(Hint{SOS: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(rawSOS) != `{"Hint":"SOS"}` {
		t.Fatalf("unexpected SOS wire form: %s", rawSOS)
	}
}

func TestChallengeModularSumScenario(t *testing.T) {
	secrets := []string{
		"2667360881372235285",
		"7064968778338382540",
		"8653237798568263501",
	}
	modulus, _ := new(big.Int).SetString("1524576388644652385", 10)

	sum := new(big.Int)
	for _, s := range secrets {
		n, _ := new(big.Int).SetString(s, 10)
		sum.Add(sum, n)
	}
	answer := new(big.Int).Mod(sum, modulus)

	if answer.String() != "90650794543052706" {
		t.Fatalf("expected 90650794543052706, got %s", answer.String())
	}
}

func TestMessageErrorOnUnknownVariant(t *testing.T) {
	_, _, err := Unwrap([]byte(`{"Bogus":1}`))
	if err == nil {
		t.Fatal("expected error for unknown variant")
	}
	if _, ok := err.(*MessageError); !ok {
		t.Fatalf("expected *MessageError, got %T", err)
	}
}

func TestLegacyHandshakeRejected(t *testing.T) {
	_, _, err := Unwrap([]byte(`{"Hello":{}}`))
	if err == nil {
		t.Fatal("expected legacy Hello variant to be rejected")
	}
}
