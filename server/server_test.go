package server

import (
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/inconshreveable/log15/v3"

	"github.com/jayllyz/labyrinth/internal/protocol"
)

func discardLogger() log15.Logger {
	log := log15.New()
	log.SetHandler(log15.DiscardHandler())
	return log
}

func readWithTimeout(t *testing.T, conn net.Conn) (string, any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	variant, msg, err := protocol.ReadMessage(conn)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	return variant, msg
}

// TestSoloTeamRoundLifecycle drives a single one-player team through
// registration, subscription, the automatic round start, the
// single-player challenge (a lone team's one player is always the
// globally selected challenged player), and a solved-challenge move.
func TestSoloTeamRoundLifecycle(t *testing.T) {
	srv := New(discardLogger(), Config{Width: 4, Height: 4, Seed: 1, MaxPlayers: 1})

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	go srv.handleConn(serverConn)

	if err := protocol.WriteMessage(clientConn, protocol.RegisterTeam{Name: "red"}); err != nil {
		t.Fatalf("write RegisterTeam: %v", err)
	}
	_, msg := readWithTimeout(t, clientConn)
	regResult, ok := msg.(protocol.RegisterTeamResult)
	if !ok || regResult.Err != nil {
		t.Fatalf("RegisterTeamResult = %#v, want a successful Ok", msg)
	}
	token := regResult.Ok.RegistrationToken

	if err := protocol.WriteMessage(clientConn, protocol.SubscribePlayer{Name: "alice", RegistrationToken: token}); err != nil {
		t.Fatalf("write SubscribePlayer: %v", err)
	}
	_, msg = readWithTimeout(t, clientConn)
	subResult, ok := msg.(protocol.SubscribePlayerResult)
	if !ok || subResult.Err != nil {
		t.Fatalf("SubscribePlayerResult = %#v, want Ok", msg)
	}

	_, msg = readWithTimeout(t, clientConn)
	hint, ok := msg.(protocol.Hint)
	if !ok || hint.Secret == nil {
		t.Fatalf("expected Hint with a Secret, got %#v", msg)
	}
	secret := hint.Secret.Int()

	_, msg = readWithTimeout(t, clientConn)
	challenge, ok := msg.(protocol.Challenge)
	if !ok {
		t.Fatalf("expected Challenge as the sole admitted player, got %#v", msg)
	}

	_, msg = readWithTimeout(t, clientConn)
	if _, ok := msg.(protocol.RadarView); !ok {
		t.Fatalf("expected initial RadarView, got %#v", msg)
	}

	answer := new(big.Int).Mod(secret, challenge.SecretSumModulo.Int()).String()
	if err := protocol.WriteMessage(clientConn, protocol.Action{SolveChallenge: &protocol.SolveChallengeAction{Answer: answer}}); err != nil {
		t.Fatalf("write SolveChallenge Action: %v", err)
	}

	_, msg = readWithTimeout(t, clientConn)
	if _, ok := msg.(protocol.RadarView); !ok {
		t.Fatalf("expected a RadarView after solving the challenge, got %#v", msg)
	}
}

func TestActionBeforePlayingIsRejected(t *testing.T) {
	srv := New(discardLogger(), Config{Width: 3, Height: 3, Seed: 1, MaxPlayers: 2})

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	go srv.handleConn(serverConn)

	if err := protocol.WriteMessage(clientConn, protocol.RegisterTeam{Name: "blue"}); err != nil {
		t.Fatalf("write RegisterTeam: %v", err)
	}
	_, msg := readWithTimeout(t, clientConn)
	regResult := msg.(protocol.RegisterTeamResult)
	token := regResult.Ok.RegistrationToken

	if err := protocol.WriteMessage(clientConn, protocol.SubscribePlayer{Name: "alice", RegistrationToken: token}); err != nil {
		t.Fatalf("write SubscribePlayer: %v", err)
	}
	readWithTimeout(t, clientConn) // SubscribePlayerResult

	// MaxPlayers is 2 and only one player has subscribed, so the round
	// never starts and the player is still in the Subscribed state.
	answer := "0"
	if err := protocol.WriteMessage(clientConn, protocol.Action{SolveChallenge: &protocol.SolveChallengeAction{Answer: answer}}); err != nil {
		t.Fatalf("write Action: %v", err)
	}
	_, msg = readWithTimeout(t, clientConn)
	if _, ok := msg.(protocol.MessageErrorPayload); !ok {
		t.Fatalf("expected MessageError for an Action before Playing, got %#v", msg)
	}
}
