package server

import (
	"net"
	"testing"

	"github.com/jayllyz/labyrinth/internal/protocol"
)

func TestGenerateTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := generateToken()
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestRegistryRegisterDuplicateName(t *testing.T) {
	r := NewRegistry(2)
	if _, err := r.Register("red"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := r.Register("red")
	if err == nil || *err != protocol.TeamAlreadyRegistered {
		t.Fatalf("Register duplicate name = %v, want TeamAlreadyRegistered", err)
	}
}

func TestRegistryRegisterInvalidName(t *testing.T) {
	r := NewRegistry(2)
	_, err := r.Register("")
	if err == nil || *err != protocol.InvalidName {
		t.Fatalf("Register empty name = %v, want InvalidName", err)
	}
}

func TestRegistrySubscribeInvalidToken(t *testing.T) {
	r := NewRegistry(2)
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	_, _, err := r.Subscribe("alice", "not-a-real-token", c1)
	if err == nil || *err != protocol.InvalidRegistrationToken {
		t.Fatalf("Subscribe bad token = %v, want InvalidRegistrationToken", err)
	}
}

func TestRegistrySubscribeDuplicatePlayerName(t *testing.T) {
	r := NewRegistry(2)
	team, err := r.Register("red")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	if _, _, subErr := r.Subscribe("alice", team.Token, c1); subErr != nil {
		t.Fatalf("first Subscribe: %v", subErr)
	}
	c3, c4 := net.Pipe()
	defer c3.Close()
	defer c4.Close()
	_, _, subErr := r.Subscribe("alice", team.Token, c3)
	if subErr == nil || *subErr != protocol.AlreadyRegistered {
		t.Fatalf("Subscribe duplicate player = %v, want AlreadyRegistered", subErr)
	}
}

func TestRegistrySubscribeTooManyPlayers(t *testing.T) {
	r := NewRegistry(1)
	team, err := r.Register("red")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	if _, _, subErr := r.Subscribe("alice", team.Token, c1); subErr != nil {
		t.Fatalf("first Subscribe: %v", subErr)
	}
	c3, c4 := net.Pipe()
	defer c3.Close()
	defer c4.Close()
	_, _, subErr := r.Subscribe("bob", team.Token, c3)
	if subErr == nil || *subErr != protocol.TooManyPlayers {
		t.Fatalf("Subscribe over roster = %v, want TooManyPlayers", subErr)
	}
}

func TestRegistryAllFullRequiresAtLeastOneTeam(t *testing.T) {
	r := NewRegistry(1)
	if r.AllFull() {
		t.Fatalf("AllFull on empty registry = true, want false")
	}
	team, err := r.Register("red")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.AllFull() {
		t.Fatalf("AllFull before any player subscribed = true, want false")
	}
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	if _, _, subErr := r.Subscribe("alice", team.Token, c1); subErr != nil {
		t.Fatalf("Subscribe: %v", subErr)
	}
	if !r.AllFull() {
		t.Fatalf("AllFull after roster filled = false, want true")
	}
}

func TestTeamMovementGating(t *testing.T) {
	team := &Team{Secrets: map[string]protocol.U128{}}
	if !team.MovementAllowed() {
		t.Fatalf("ungated team MovementAllowed = false, want true")
	}

	team.SetChallenge(protocol.U128FromUint64(7), "3", "alice")
	if team.MovementAllowed() {
		t.Fatalf("freshly challenged team MovementAllowed = true, want false")
	}

	expected, challenged := team.Answer()
	if expected != "3" || challenged != "alice" {
		t.Fatalf("Answer() = (%q, %q), want (\"3\", \"alice\")", expected, challenged)
	}

	team.MarkSolved()
	if !team.MovementAllowed() {
		t.Fatalf("solved team MovementAllowed = false, want true")
	}
}

func TestTeamSecretSum(t *testing.T) {
	team := &Team{Secrets: map[string]protocol.U128{}}
	team.StoreSecret("alice", protocol.U128FromUint64(10))
	team.StoreSecret("bob", protocol.U128FromUint64(32))
	if got := team.SecretSum().Int64(); got != 42 {
		t.Fatalf("SecretSum = %d, want 42", got)
	}
}
