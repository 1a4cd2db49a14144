// Package challenge holds the two pieces of shared state a client team
// uses to answer the server's modular-sum challenge: the team-wide
// secret shares handed out via Hint::Secret, and the current modulus
// announced via Challenge::SecretSumModulo. Lock order is modulus
// before secrets, never the reverse.
package challenge

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/jayllyz/labyrinth/internal/protocol"
)

// ErrNoModulus is returned by Solve/Retry when no Challenge has been
// received yet.
var ErrNoModulus = fmt.Errorf("challenge: no modulus received yet")

// State is the team-wide shared challenge state: the modulus (lock M)
// and the secret shares (lock S).
type State struct {
	modulusMu sync.Mutex
	modulus   *big.Int

	secretsMu sync.Mutex
	secrets   map[string]*big.Int
}

// NewState returns an empty challenge State.
func NewState() *State {
	return &State{secrets: make(map[string]*big.Int)}
}

// StoreSecret records a secret share under the caller's own identity,
// overwriting any previously stored share for that name.
func (s *State) StoreSecret(name string, secret protocol.U128) {
	s.secretsMu.Lock()
	defer s.secretsMu.Unlock()
	s.secrets[name] = new(big.Int).Set(secret.Int())
}

// Solve records a newly announced modulus and computes (sum of secrets)
// mod modulus, holding the modulus lock across the secrets-lock section
// exactly as the server's retry protocol requires. The decimal-rendered
// answer is returned for use in Action::SolveChallenge.
func (s *State) Solve(modulus protocol.U128) (string, error) {
	s.modulusMu.Lock()
	defer s.modulusMu.Unlock()
	s.modulus = new(big.Int).Set(modulus.Int())
	return s.computeLocked()
}

// Retry recomputes the answer using the already-stored modulus, for use
// when the server replies ActionError::InvalidChallengeSolution and no
// new Challenge was sent.
func (s *State) Retry() (string, error) {
	s.modulusMu.Lock()
	defer s.modulusMu.Unlock()
	if s.modulus == nil {
		return "", ErrNoModulus
	}
	return s.computeLocked()
}

// computeLocked sums the stored secrets mod s.modulus. Callers must hold
// modulusMu; it acquires secretsMu itself, preserving the M-before-S
// lock order.
func (s *State) computeLocked() (string, error) {
	s.secretsMu.Lock()
	sum := new(big.Int)
	for _, v := range s.secrets {
		sum.Add(sum, v)
	}
	s.secretsMu.Unlock()

	answer := new(big.Int).Mod(sum, s.modulus)
	return answer.String(), nil
}
