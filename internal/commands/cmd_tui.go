package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/eventbus"
	"github.com/colonyops/taskboard/internal/core/notify"
	"github.com/colonyops/taskboard/internal/httpserver"
	"github.com/colonyops/taskboard/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *board.App

	card board.Card
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *board.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the open command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "open",
		Usage:     "Open a card's comments in the terminal UI",
		UsageText: "taskboard open --card <id> [--column <id>] [--dashboard <id>]",
		Flags:     cmd.Flags(),
		Action:    cmd.run,
	})
	return app
}

// Flags returns the TUI-specific flags.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "card",
			Usage:       "card id to open",
			Required:    true,
			Destination: &cmd.card.ID,
		},
		&cli.Int64Flag{
			Name:        "column",
			Usage:       "column id of the card, needed to post comments",
			Value:       1,
			Destination: &cmd.card.ColumnID,
		},
		&cli.Int64Flag{
			Name:        "dashboard",
			Usage:       "dashboard id of the card, needed to post comments",
			Value:       1,
			Destination: &cmd.card.DashboardID,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("TASKBOARD_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.flags.ProfilerPort > 0 {
		profServer := httpserver.Pprof(cmd.flags.ProfilerPort)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	session := cmd.app.NewSession()
	defer session.Close()

	m := tui.New(cmd.app, session, tui.Options{Card: cmd.card})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if cmd.app.Bus != nil {
		forwardNotifications(cmd.app.Bus, p)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// forwardNotifications sends bus notifications into the running program.
func forwardNotifications(bus *eventbus.EventBus, p *tea.Program) {
	bus.SubscribeNotificationPublished(func(n eventbus.NotificationPublishedPayload) {
		p.Send(tui.NotificationMsg(notify.Notification{
			Level:     n.Level,
			Message:   n.Message,
			CreatedAt: time.Now(),
		}))
	})
}
