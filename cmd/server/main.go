// Command labyrinth-server runs the maze-exploration server: it
// generates a maze, accepts team and player registrations, and drives
// rounds to completion.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/jayllyz/labyrinth/server"
	"github.com/jayllyz/labyrinth/spectator"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	log := log15.New()
	log.SetHandler(log15.StreamHandler(os.Stderr, log15.TerminalFormat()))

	cmd := &cli.Command{
		Name:  "labyrinth-server",
		Usage: "run the maze-exploration server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "0.0.0.0"},
			&cli.IntFlag{Name: "port", Value: 9000},
			&cli.IntFlag{Name: "width", Value: 16},
			&cli.IntFlag{Name: "height", Value: 16},
			&cli.IntFlag{Name: "seed", Value: 1},
			&cli.IntFlag{Name: "max-players", Value: 1},
			&cli.StringFlag{Name: "spectator-addr"},
			&cli.BoolFlag{Name: "ngrok"},
			&cli.StringFlag{Name: "ngrok-authtoken"},
			&cli.StringFlag{Name: "ngrok-domain"},
			&cli.StringFlag{Name: "env-file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, log, cmd)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Crit("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log log15.Logger, cmd *cli.Command) error {
	if envFile := cmd.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("labyrinth-server: load env file: %w", err)
		}
	}

	var hub *spectator.Hub
	if cmd.String("spectator-addr") != "" {
		hub = spectator.NewHub(log.New("component", "spectator"))
		go hub.Run()
	}

	srv := server.New(log.New("component", "server"), server.Config{
		Width:      int(cmd.Int("width")),
		Height:     int(cmd.Int("height")),
		Seed:       cmd.Int("seed"),
		MaxPlayers: int(cmd.Int("max-players")),
		Spectator:  hub,
	})

	if addr := cmd.String("spectator-addr"); addr != "" {
		spec := spectator.NewServer(log.New("component", "spectator-api"), hub, srv.TeamsSnapshot, srv.GraphSnapshot)
		go func() {
			log.Info("spectator HTTP listening", "addr", addr)
			if err := http.ListenAndServe(addr, spec); err != nil {
				log.Error("spectator HTTP server stopped", "err", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("labyrinth-server: listen on %s: %w", addr, err)
	}
	log.Info("listening", "addr", addr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ln) })

	listeners := []net.Listener{ln}
	if cmd.Bool("ngrok") {
		tun, err := dialNgrok(ctx, log, cmd)
		if err != nil {
			return err
		}
		listeners = append(listeners, tun)
		g.Go(func() error { return srv.Serve(tun) })
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		for _, l := range listeners {
			_ = l.Close()
		}
		return srv.Shutdown()
	})

	return g.Wait()
}

// dialNgrok opens the tunnel and returns it as a net.Listener so the
// caller can hand it to the same Server.Serve used for the plain
// listener.
func dialNgrok(ctx context.Context, log log15.Logger, cmd *cli.Command) (net.Listener, error) {
	token := cmd.String("ngrok-authtoken")
	if token == "" {
		token = os.Getenv("NGROK_AUTHTOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("labyrinth-server: --ngrok requires --ngrok-authtoken or NGROK_AUTHTOKEN")
	}

	var tunnelOpts ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnelOpts = ngrokConfig.TCPEndpoint(ngrokConfig.WithRemoteAddr(domain))
	} else {
		tunnelOpts = ngrokConfig.TCPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnelOpts, ngrok.WithAuthtoken(token))
	if err != nil {
		return nil, fmt.Errorf("labyrinth-server: start ngrok tunnel: %w", err)
	}
	log.Info("ngrok tunnel established", "url", tun.URL())
	return tun, nil
}
