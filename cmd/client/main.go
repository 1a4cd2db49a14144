// Command labyrinth-client runs a team of agents against a labyrinth
// server: it registers the team, subscribes each configured player on
// its own connection, and drives them to the goal.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/jayllyz/labyrinth/client"
	"github.com/jayllyz/labyrinth/internal/agent"
	"github.com/jayllyz/labyrinth/internal/agentcfg"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	log := log15.New()
	log.SetHandler(log15.StreamHandler(os.Stderr, log15.TerminalFormat()))

	cmd := &cli.Command{
		Name:  "labyrinth-client",
		Usage: "register a team and run its agents against a labyrinth server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "127.0.0.1"},
			&cli.IntFlag{Name: "port", Value: 9000},
			&cli.StringFlag{Name: "team", Required: true},
			&cli.StringSliceFlag{Name: "players", Required: true, Usage: "agent names, repeatable or comma-separated"},
			&cli.StringFlag{Name: "algorithm", Value: "RightHand", Usage: "default exploration algorithm: RightHand, Tremeaux, or Alian"},
			&cli.StringFlag{Name: "roster", Usage: "optional YAML file overriding the algorithm per agent name"},
			&cli.IntFlag{Name: "retries", Value: 0, Usage: "max dial attempts per connection, 0 for unlimited"},
			&cli.DurationFlag{Name: "backoff-min", Value: 100 * time.Millisecond},
			&cli.DurationFlag{Name: "backoff-max", Value: 5 * time.Second},
			&cli.StringFlag{Name: "env-file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, log, cmd)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Crit("client exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log log15.Logger, cmd *cli.Command) error {
	if envFile := cmd.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("labyrinth-client: load env file: %w", err)
		}
	}

	if _, ok := agent.ParseAlgorithm(cmd.String("algorithm")); !ok {
		return fmt.Errorf("labyrinth-client: unknown --algorithm %q", cmd.String("algorithm"))
	}

	var roster *agentcfg.Roster
	if path := cmd.String("roster"); path != "" {
		r, err := agentcfg.Load(path)
		if err != nil {
			return fmt.Errorf("labyrinth-client: %w", err)
		}
		roster = r
	} else {
		roster = &agentcfg.Roster{Default: cmd.String("algorithm")}
	}

	players := splitPlayers(cmd.StringSlice("players"))
	if len(players) == 0 {
		return fmt.Errorf("labyrinth-client: at least one --players name is required")
	}

	cfg := client.Config{
		Addr:       fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
		Team:       cmd.String("team"),
		Players:    players,
		Roster:     roster,
		MaxRetries: int(cmd.Int("retries")),
		BackoffMin: cmd.Duration("backoff-min"),
		BackoffMax: cmd.Duration("backoff-max"),
	}

	log.Info("starting team", "team", cfg.Team, "addr", cfg.Addr, "players", players)
	return client.Run(ctx, log, cfg)
}

// splitPlayers lets --players accept either repeated flags or a single
// comma-separated value, matching how urfave/cli StringSliceFlag
// accumulates either form.
func splitPlayers(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, name := range strings.Split(r, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
