package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateToken returns a 16-character alphanumeric token suffixed with
// a base-36 timestamp, guaranteeing freshness across server restarts
// within the same process lifetime.
func generateToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("server: crypto/rand failed: %v", err))
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// Player is one admitted team member's server-side connection state. The
// connection's own read loop and the game-state goroutine that starts a
// round both touch it, so every field is behind mu.
type Player struct {
	Name string
	Conn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	state    protocol.ServerState
	Position mazegraph.Cell
	Facing   protocol.Direction
}

// Send frames and writes msg to the player's connection, serializing
// against any other goroutine (the round-start broadcast) writing to the
// same connection concurrently.
func (p *Player) Send(msg any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return protocol.WriteMessage(p.Conn, msg)
}

// SetState transitions the player's server-side protocol state.
func (p *Player) SetState(s protocol.ServerState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// GetState returns the player's current server-side protocol state.
func (p *Player) GetState() protocol.ServerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetPosition updates the player's position.
func (p *Player) SetPosition(c mazegraph.Cell) {
	p.mu.Lock()
	p.Position = c
	p.mu.Unlock()
}

// SnapshotPosition returns the player's last known position and facing.
func (p *Player) SnapshotPosition() (mazegraph.Cell, protocol.Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Position, p.Facing
}

// SetFacing updates the player's facing.
func (p *Player) SetFacing(d protocol.Direction) {
	p.mu.Lock()
	p.Facing = d
	p.mu.Unlock()
}

// Team is one registered team: its expected roster size, registration
// token, and the players admitted so far.
type Team struct {
	Name            string
	Token           string
	ExpectedPlayers int

	mu              sync.RWMutex
	players         []*Player
	Secrets         map[string]protocol.U128
	Modulus         protocol.U128
	ExpectedAnswer  string
	Challenged      string // name of the one player sent this round's Challenge
	challengeIssued bool
	solved          bool
}

// Full reports whether the team has admitted its expected player count.
func (t *Team) Full() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.players) >= t.ExpectedPlayers
}

// Players returns a snapshot of the admitted players.
func (t *Team) Players() []*Player {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Player, len(t.players))
	copy(out, t.players)
	return out
}

// StoreSecret records a player's round secret under the team's shared
// secret map.
func (t *Team) StoreSecret(name string, secret protocol.U128) {
	t.mu.Lock()
	t.Secrets[name] = secret
	t.mu.Unlock()
}

// SecretSum returns the sum of every secret stored for the team so far.
func (t *Team) SecretSum() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sum := new(big.Int)
	for _, v := range t.Secrets {
		sum.Add(sum, v.Int())
	}
	return sum
}

// SetChallenge records this round's modulus, expected answer, and which
// player was sent the Challenge. Only the one team holding the globally
// selected challenged player ever calls this; every other team's
// movement gate stays permanently open.
func (t *Team) SetChallenge(modulus protocol.U128, expectedAnswer, challenged string) {
	t.mu.Lock()
	t.Modulus = modulus
	t.ExpectedAnswer = expectedAnswer
	t.Challenged = challenged
	t.challengeIssued = true
	t.solved = false
	t.mu.Unlock()
}

// Answer returns the team's expected challenge answer and the name of
// the player who was challenged.
func (t *Team) Answer() (expected, challenged string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ExpectedAnswer, t.Challenged
}

// MarkSolved opens the team's movement gate after a correct challenge
// answer.
func (t *Team) MarkSolved() {
	t.mu.Lock()
	t.solved = true
	t.mu.Unlock()
}

// MovementAllowed reports whether the team may act on MoveTo requests:
// true for every team never issued a Challenge, and for a challenged
// team only once it has answered correctly.
func (t *Team) MovementAllowed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.challengeIssued || t.solved
}

func (t *Team) admit(p *Player) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.players) >= t.ExpectedPlayers {
		return false
	}
	t.players = append(t.players, p)
	return true
}

// Registry is the server-wide set of registered teams, keyed by both
// name and registration token, guarded by a single RWMutex — lock order
// teams before clients before game-state, as this is the "teams" lock.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Team
	byToken  map[string]*Team
	perTeamN int // default expected-player count when a team doesn't override it
}

// NewRegistry returns an empty team Registry. defaultPlayers is the
// expected player count announced to teams that don't request a
// different roster size.
func NewRegistry(defaultPlayers int) *Registry {
	return &Registry{
		byName:   make(map[string]*Team),
		byToken:  make(map[string]*Team),
		perTeamN: defaultPlayers,
	}
}

// Register claims name for a new team, or reports TeamAlreadyRegistered
// if it is already taken.
func (r *Registry) Register(name string) (*Team, *protocol.RegistrationError) {
	if name == "" {
		err := protocol.InvalidName
		return nil, &err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		err := protocol.TeamAlreadyRegistered
		return nil, &err
	}

	t := &Team{
		Name:            name,
		Token:           generateToken(),
		ExpectedPlayers: r.perTeamN,
		Secrets:         make(map[string]protocol.U128),
	}
	r.byName[name] = t
	r.byToken[t.Token] = t
	return t, nil
}

// Subscribe admits name to the team identified by token, recording conn
// as that player's connection.
func (r *Registry) Subscribe(name, token string, conn net.Conn) (*Team, *Player, *protocol.RegistrationError) {
	if name == "" {
		err := protocol.InvalidName
		return nil, nil, &err
	}

	r.mu.RLock()
	t, ok := r.byToken[token]
	r.mu.RUnlock()
	if !ok {
		err := protocol.InvalidRegistrationToken
		return nil, nil, &err
	}

	for _, p := range t.Players() {
		if p.Name == name {
			err := protocol.AlreadyRegistered
			return nil, nil, &err
		}
	}

	p := &Player{Name: name, Conn: conn, Facing: protocol.Front}
	if !t.admit(p) {
		err := protocol.TooManyPlayers
		return nil, nil, &err
	}
	return t, p, nil
}

// Teams returns a snapshot of all registered teams.
func (r *Registry) Teams() []*Team {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Team, 0, len(r.byName))
	for _, t := range r.byName {
		out = append(out, t)
	}
	return out
}

// AllFull reports whether every registered team has admitted its full
// roster, and there is at least one registered team.
func (r *Registry) AllFull() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.byName) == 0 {
		return false
	}
	for _, t := range r.byName {
		if !t.Full() {
			return false
		}
	}
	return true
}

// TeamByToken looks a team up by its registration token.
func (r *Registry) TeamByToken(token string) (*Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byToken[token]
	return t, ok
}
