package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/core/logging"
	"github.com/colonyops/taskboard/internal/httpserver"
	"github.com/colonyops/taskboard/internal/mockapi"
)

type MockCmd struct {
	flags *Flags

	// flags
	addr  string
	cards []int64
	seed  int
	token string
}

// NewMockCmd creates a new mock-server command
func NewMockCmd(flags *Flags) *MockCmd {
	return &MockCmd{flags: flags}
}

// Register adds the mock-server command to the application
func (cmd *MockCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "mock-server",
		Usage:     "Serve an in-memory comments API for local development",
		UsageText: "taskboard mock-server [--addr host:port] [--card id...] [--seed n]",
		Description: `Starts an HTTP server that implements the comments endpoints of the task
board API against an in-memory store. Each --card is seeded with --seed
comments from three authors; the caller is the first author.

Point api.base_url at the printed address to drive the TUI without a real
backend.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (default mock.addr)",
				Destination: &cmd.addr,
			},
			&cli.Int64SliceFlag{
				Name:  "card",
				Usage: "card ids to seed",
				Value: []int64{1},
			},
			&cli.IntFlag{
				Name:        "seed",
				Usage:       "comments per card (default mock.seed_comments)",
				Value:       -1,
				Destination: &cmd.seed,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "require this bearer token (default api.token)",
				Destination: &cmd.token,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MockCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Mock.Addr
	}
	seed := cmd.seed
	if seed < 0 {
		seed = cfg.Mock.SeedComments
	}
	token := cmd.token
	if token == "" {
		token = cfg.API.Token
	}

	store := mockapi.NewStore()
	for _, card := range c.Int64Slice("card") {
		store.Seed(card, seed)
	}

	api := mockapi.NewServer(store, mockapi.Options{
		Token:  token,
		Logger: logging.Component("mockapi"),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New("mock-api", addr, api)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "mock API listening on http://%s\n", srv.Addr())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown mock api: %w", err)
	}
	return nil
}
