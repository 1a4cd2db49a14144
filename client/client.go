// Package client implements the team-side runtime: connecting to a
// server with retry, registering a team, subscribing a roster of
// agents, and running one worker goroutine per agent that answers
// radar views with moves until it wins, loses its connection, or the
// group's context is cancelled.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"
	"golang.org/x/sync/errgroup"

	"github.com/jayllyz/labyrinth/internal/agent"
	"github.com/jayllyz/labyrinth/internal/agentcfg"
	"github.com/jayllyz/labyrinth/internal/challenge"
	"github.com/jayllyz/labyrinth/internal/explore"
	"github.com/jayllyz/labyrinth/internal/mazegraph"
	"github.com/jayllyz/labyrinth/internal/protocol"
	"github.com/jayllyz/labyrinth/internal/radar"
)

// sharedGraph is the team-wide maze graph every agent worker updates and
// reads from, guarded by a single mutex per the package doc on
// mazegraph.Graph. Lock sections stay brief: one UpdateGraph+Decide pair
// per radar view.
type sharedGraph struct {
	mu sync.Mutex
	g  *mazegraph.Graph
}

func newSharedGraph() *sharedGraph {
	g := mazegraph.New()
	g.Insert(mazegraph.Cell{Row: 0, Col: 0}, mazegraph.Nothing)
	return &sharedGraph{g: g}
}

// decide updates the shared graph from view and picks a's next move,
// both under the same lock acquisition so teammates never observe a
// graph mutated mid-decision.
func (s *sharedGraph) decide(a *agent.Agent, view *radar.View) protocol.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	explore.UpdateGraph(s.g, a, view)
	return explore.Decide(s.g, a, view)
}

// Config controls one team run.
type Config struct {
	Addr       string
	Team       string
	Players    []string
	Roster     *agentcfg.Roster
	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
}

// Dial connects to addr, retrying with exponential backoff until it
// succeeds, ctx is cancelled, or MaxRetries is exhausted (0 means
// unlimited).
func Dial(ctx context.Context, log log15.Logger, cfg Config) (net.Conn, error) {
	b := &backoff.Backoff{Min: cfg.BackoffMin, Max: cfg.BackoffMax, Factor: 2, Jitter: true}
	var dialer net.Dialer

	for attempt := 1; ; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
		if err == nil {
			return conn, nil
		}
		if cfg.MaxRetries > 0 && attempt >= cfg.MaxRetries {
			return nil, fmt.Errorf("client: dial %s: exhausted %d attempts: %w", cfg.Addr, attempt, err)
		}
		wait := b.Duration()
		log.Debug("dial failed, retrying", "addr", cfg.Addr, "attempt", attempt, "wait", wait, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Run dials a short-lived connection to register cfg.Team, then spawns
// one worker per configured player, each opening its own TCP
// connection and running until it wins, its connection fails, or the
// group's context is cancelled. The first worker error is returned.
func Run(ctx context.Context, log log15.Logger, cfg Config) error {
	regConn, err := Dial(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("client: registration dial: %w", err)
	}
	token, expected, err := registerTeam(regConn, cfg.Team, len(cfg.Players))
	regConn.Close()
	if err != nil {
		return err
	}
	log.Info("team registered", "team", cfg.Team, "expected_players", expected)

	// One graph and one challenge state for the whole team: every agent
	// worker reads and writes both, per spec's team-wide shared-graph
	// and shared-secrets requirements.
	graph := newSharedGraph()
	ch := challenge.NewState()

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range cfg.Players {
		name := name
		g.Go(func() error {
			conn, err := Dial(ctx, log, cfg)
			if err != nil {
				return fmt.Errorf("client: player %s dial: %w", name, err)
			}
			defer conn.Close()
			return runPlayer(ctx, log.New("player", name), conn, name, token, cfg.Roster, graph, ch)
		})
	}
	return g.Wait()
}

func registerTeam(conn net.Conn, team string, players int) (token string, expected int, err error) {
	if err := protocol.WriteMessage(conn, protocol.RegisterTeam{Name: team}); err != nil {
		return "", 0, fmt.Errorf("client: RegisterTeam: %w", err)
	}
	_, msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return "", 0, fmt.Errorf("client: RegisterTeamResult: %w", err)
	}
	result, ok := msg.(protocol.RegisterTeamResult)
	if !ok {
		return "", 0, fmt.Errorf("client: expected RegisterTeamResult, got %T", msg)
	}
	if result.Err != nil {
		return "", 0, fmt.Errorf("client: team registration refused: %s", *result.Err)
	}
	return result.Ok.RegistrationToken, result.Ok.ExpectedPlayers, nil
}

// runPlayer subscribes one named agent on its own connection and drives
// it until it wins, the connection closes, or ctx is cancelled, reading
// and updating the team-wide graph and challenge state shared with every
// other worker spawned by the same Run call.
func runPlayer(ctx context.Context, log log15.Logger, conn net.Conn, name, token string, roster *agentcfg.Roster, graph *sharedGraph, ch *challenge.State) error {
	if err := protocol.WriteMessage(conn, protocol.SubscribePlayer{Name: name, RegistrationToken: token}); err != nil {
		return fmt.Errorf("client: SubscribePlayer: %w", err)
	}
	_, msg, err := protocol.ReadMessage(conn)
	if err != nil {
		return fmt.Errorf("client: SubscribePlayerResult: %w", err)
	}
	result, ok := msg.(protocol.SubscribePlayerResult)
	if !ok {
		return fmt.Errorf("client: expected SubscribePlayerResult, got %T", msg)
	}
	if result.Err != nil {
		return fmt.Errorf("client: subscription refused: %s", *result.Err)
	}

	a := agent.New(name, roster.AlgorithmFor(name))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, msg, err := protocol.ReadMessage(conn)
		if err != nil {
			return fmt.Errorf("client: read: %w", err)
		}

		switch m := msg.(type) {
		case protocol.Hint:
			if m.Secret != nil {
				ch.StoreSecret(name, *m.Secret)
			}

		case protocol.Challenge:
			answer, err := ch.Solve(m.SecretSumModulo)
			if err != nil {
				return fmt.Errorf("client: solve challenge: %w", err)
			}
			if err := protocol.WriteMessage(conn, protocol.Action{SolveChallenge: &protocol.SolveChallengeAction{Answer: answer}}); err != nil {
				return fmt.Errorf("client: send challenge answer: %w", err)
			}

		case protocol.ActionError:
			if m.Kind == protocol.InvalidChallengeSolution {
				answer, err := ch.Retry()
				if err != nil {
					return fmt.Errorf("client: retry challenge: %w", err)
				}
				if err := protocol.WriteMessage(conn, protocol.Action{SolveChallenge: &protocol.SolveChallengeAction{Answer: answer}}); err != nil {
					return fmt.Errorf("client: resend challenge answer: %w", err)
				}
				continue
			}
			log.Debug("action rejected", "kind", m.Kind)

		case protocol.RadarView:
			view, err := radar.Decode(protocol.DecodeRadarBase64(m.Payload))
			if err != nil {
				return fmt.Errorf("client: decode radar: %w", err)
			}
			turn := graph.decide(a, view)
			won := explore.CheckWin(view, turn)
			if err := protocol.WriteMessage(conn, protocol.Action{MoveTo: &turn}); err != nil {
				return fmt.Errorf("client: send move: %w", err)
			}
			if won {
				log.Info("reached the objective", "position", a.Position)
				return nil
			}

		default:
			log.Warn("unexpected message", "type", fmt.Sprintf("%T", msg))
		}
	}
}
