package challenge

import (
	"math/big"
	"testing"

	"github.com/jayllyz/labyrinth/internal/protocol"
)

func u128(s string) protocol.U128 {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad literal: " + s)
	}
	return protocol.NewU128(n)
}

func TestModularSumScenario(t *testing.T) {
	s := NewState()
	s.StoreSecret("alice", u128("2667360881372235285"))
	s.StoreSecret("bob", u128("7064968778338382540"))
	s.StoreSecret("carol", u128("8653237798568263501"))

	answer, err := s.Solve(u128("1524576388644652385"))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if answer != "90650794543052706" {
		t.Fatalf("answer = %s, want 90650794543052706", answer)
	}
}

func TestRetryReusesStoredModulusWithoutANewChallenge(t *testing.T) {
	s := NewState()
	s.StoreSecret("alice", u128("10"))
	s.StoreSecret("bob", u128("25"))

	if _, err := s.Solve(u128("7")); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	s.StoreSecret("carol", u128("3")) // arrives late, before the retry

	answer, err := s.Retry()
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	// (10 + 25 + 3) mod 7 = 38 mod 7 = 3
	if answer != "3" {
		t.Fatalf("answer = %s, want 3", answer)
	}
}

func TestRetryBeforeAnyModulusFails(t *testing.T) {
	s := NewState()
	if _, err := s.Retry(); err != ErrNoModulus {
		t.Fatalf("err = %v, want ErrNoModulus", err)
	}
}
