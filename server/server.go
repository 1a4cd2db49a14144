// Package server implements the labyrinth server runtime: the listener,
// one worker goroutine per accepted connection, the team registry, the
// round-start broadcast, move validation against the generated maze,
// and the optional spectator event feed.
package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/inconshreveable/log15/v3"
	"go.uber.org/multierr"

	"github.com/jayllyz/labyrinth/internal/mazegen"
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
	"github.com/jayllyz/labyrinth/internal/radar"
	"github.com/jayllyz/labyrinth/spectator"
)

// Config configures a Server.
type Config struct {
	Width, Height int
	Seed          int64
	MaxPlayers    int // default expected player count per team
	Spectator     *spectator.Hub
}

// Server holds all server-side shared state: the team registry, the
// maze every team plays against, and the game-state lock that gates the
// once-only round-start broadcast.
type Server struct {
	log      log15.Logger
	registry *Registry
	maze     *mazegen.Maze
	goal     mazegraph.Cell
	spec     *spectator.Hub

	mu      sync.Mutex // game-state lock: guards started
	started bool
}

// New builds a Server with a freshly generated maze.
func New(log log15.Logger, cfg Config) *Server {
	maze := mazegen.Generate(cfg.Width, cfg.Height, cfg.Seed)
	return &Server{
		log:      log,
		registry: NewRegistry(cfg.MaxPlayers),
		maze:     maze,
		goal:     maze.Exit,
		spec:     cfg.Spectator,
	}
}

// Serve accepts connections on ln until it is closed, spawning one
// worker goroutine per connection.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.log.New("remote", conn.RemoteAddr(), "conn", uuid.NewString())

	var team *Team
	var player *Player

	for {
		variant, msg, err := protocol.ReadMessage(conn)
		if err != nil {
			if err != io.EOF {
				log.Debug("connection closed", "err", err)
			}
			return
		}

		switch m := msg.(type) {
		case protocol.RegisterTeam:
			if team != nil {
				s.sendError(conn, "RegisterTeam after registration")
				continue
			}
			t, regErr := s.registry.Register(m.Name)
			if regErr != nil {
				_ = protocol.WriteMessage(conn, protocol.RegisterTeamResult{Err: regErr})
				continue
			}
			team = t
			_ = protocol.WriteMessage(conn, protocol.RegisterTeamResult{
				Ok: &protocol.RegisterTeamOk{ExpectedPlayers: t.ExpectedPlayers, RegistrationToken: t.Token},
			})

		case protocol.SubscribePlayer:
			if player != nil {
				s.sendError(conn, "SubscribePlayer after subscription")
				continue
			}
			t, p, regErr := s.registry.Subscribe(m.Name, m.RegistrationToken, conn)
			if regErr != nil {
				_ = protocol.WriteMessage(conn, protocol.SubscribePlayerResult{Err: regErr})
				continue
			}
			team, player = t, p
			p.SetState(protocol.ServerSubscribed)
			_ = protocol.WriteMessage(conn, protocol.SubscribePlayerResult{Ok: true})

			if s.registry.AllFull() {
				s.startRound()
			}

		case protocol.Action:
			if player == nil || player.GetState() != protocol.ServerPlaying {
				s.sendError(conn, "Action before Playing")
				continue
			}
			s.handleAction(log, team, player, m)

		default:
			log.Warn("unexpected message variant", "variant", variant)
			s.sendError(conn, fmt.Sprintf("unexpected message: %s", variant))
		}
	}
}

func (s *Server) sendError(w io.Writer, reason string) {
	_ = protocol.WriteMessage(w, protocol.MessageErrorPayload{Message: reason})
}

// startRound runs exactly once: it assigns and announces secrets, picks
// the one challenged player, and sends every admitted player its
// initial radar view. Per spec.md's Open Question decision, a lone team
// filling its own roster starts the round on its own.
func (s *Server) startRound() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	var all []*Player
	teamOf := map[*Player]*Team{}
	for _, t := range s.registry.Teams() {
		for _, p := range t.Players() {
			all = append(all, p)
			teamOf[p] = t
		}
	}
	if len(all) == 0 {
		return
	}

	for _, p := range all {
		secret := randomU128()
		teamOf[p].StoreSecret(p.Name, secret)
		if err := p.Send(protocol.Hint{Secret: &secret}); err != nil {
			s.log.Warn("failed to send secret hint", "player", p.Name, "err", err)
		}
	}

	challenged := all[randomIndex(len(all))]
	modulus := randomNonzeroU128()
	expected := new(big.Int).Mod(teamOf[challenged].SecretSum(), modulus.Int()).String()
	teamOf[challenged].SetChallenge(modulus, expected, challenged.Name)
	if err := challenged.Send(protocol.Challenge{SecretSumModulo: modulus}); err != nil {
		s.log.Warn("failed to send challenge", "player", challenged.Name, "err", err)
	}

	sameTeam := make(map[*Player]map[string]bool, len(all))
	for _, p := range all {
		t := teamOf[p]
		names := make(map[string]bool)
		for _, tp := range t.Players() {
			names[tp.Name] = true
		}
		sameTeam[p] = names
	}

	for _, p := range all {
		p.SetState(protocol.ServerPlaying)
		view := synthesizeView(s.maze, s.goal, p, all, sameTeam[p])
		if err := p.Send(protocol.RadarView{Payload: protocol.EncodeRadarBase64(radar.Encode(view))}); err != nil {
			s.log.Warn("failed to send initial radar view", "player", p.Name, "err", err)
		}
		if s.spec != nil {
			s.spec.Publish(spectator.Event{Kind: "round-start", Team: teamOf[p].Name, Data: p.Name})
		}
	}
}

func (s *Server) handleAction(log log15.Logger, team *Team, player *Player, a protocol.Action) {
	switch {
	case a.SolveChallenge != nil:
		expected, challenged := team.Answer()
		if challenged != player.Name {
			_ = player.Send(protocol.ActionError{Kind: protocol.InvalidChallengeSolution})
			return
		}
		if a.SolveChallenge.Answer != expected {
			_ = player.Send(protocol.ActionError{Kind: protocol.InvalidChallengeSolution})
			return
		}
		team.MarkSolved()
		s.sendNextRadar(team, player)

	case a.MoveTo != nil:
		if !team.MovementAllowed() {
			_ = player.Send(protocol.ActionError{Kind: protocol.SolveChallengeFirst})
			return
		}
		all := s.allPlayers()
		outcome := validateMove(s.maze, player, *a.MoveTo, all)
		if outcome.errKind != nil {
			_ = player.Send(protocol.ActionError{Kind: *outcome.errKind})
			return
		}
		player.SetFacing(facingAfterTurn(player, *a.MoveTo))
		player.SetPosition(outcome.newPos)
		s.sendNextRadar(team, player)
		if s.spec != nil {
			s.spec.Publish(spectator.Event{Kind: "move", Team: team.Name, Data: map[string]any{"player": player.Name, "to": outcome.newPos}})
		}

	default:
		log.Warn("empty Action")
	}
}

func facingAfterTurn(p *Player, turn protocol.Direction) protocol.Direction {
	_, facing := p.SnapshotPosition()
	return facing.Turn(turn)
}

func (s *Server) sendNextRadar(team *Team, player *Player) {
	all := s.allPlayers()
	names := make(map[string]bool)
	for _, tp := range team.Players() {
		names[tp.Name] = true
	}
	view := synthesizeView(s.maze, s.goal, player, all, names)
	if err := player.Send(protocol.RadarView{Payload: protocol.EncodeRadarBase64(radar.Encode(view))}); err != nil {
		s.log.Warn("failed to send radar view", "player", player.Name, "err", err)
	}
}

// Shutdown closes every admitted player's connection, aggregating any
// close errors rather than stopping at the first one.
func (s *Server) Shutdown() error {
	var err error
	for _, p := range s.allPlayers() {
		err = multierr.Append(err, p.Conn.Close())
	}
	return err
}

func (s *Server) allPlayers() []*Player {
	var all []*Player
	for _, t := range s.registry.Teams() {
		all = append(all, t.Players()...)
	}
	return all
}

// TeamsSnapshot reports every registered team for the spectator debug
// surface.
func (s *Server) TeamsSnapshot() []spectator.TeamSnapshot {
	teams := s.registry.Teams()
	out := make([]spectator.TeamSnapshot, 0, len(teams))
	for _, t := range teams {
		players := t.Players()
		names := make([]string, len(players))
		for i, p := range players {
			names[i] = p.Name
		}
		out = append(out, spectator.TeamSnapshot{Name: t.Name, ExpectedPlayers: t.ExpectedPlayers, Players: names})
	}
	return out
}

// GraphSnapshot reports the full maze cell grid, gated on a valid
// registration token, for the spectator debug surface.
func (s *Server) GraphSnapshot(token string) ([]spectator.CellSnapshot, bool) {
	if _, ok := s.registry.TeamByToken(token); !ok {
		return nil, false
	}
	cells := make([]spectator.CellSnapshot, 0, s.maze.Width*s.maze.Height)
	for r := 0; r < s.maze.Height; r++ {
		for c := 0; c < s.maze.Width; c++ {
			cell := mazegraph.Cell{Row: int16(r), Col: int16(c)}
			cells = append(cells, spectator.CellSnapshot{Row: r, Col: c, Goal: cell == s.goal})
		}
	}
	return cells, true
}

func randomU128() protocol.U128 {
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		panic(fmt.Sprintf("server: crypto/rand failed: %v", err))
	}
	return protocol.NewU128(n)
}

// randomNonzeroU128 draws a modulus that is never zero, since the
// challenge answer is defined modulo it.
func randomNonzeroU128() protocol.U128 {
	for {
		v := randomU128()
		if v.Int().Sign() != 0 {
			return v
		}
	}
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("server: crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}
