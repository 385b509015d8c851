package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/commands"
	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/core/eventbus"
	"github.com/colonyops/taskboard/internal/core/logging"
	"github.com/colonyops/taskboard/internal/core/styles"
	"github.com/colonyops/taskboard/internal/remote"
	"github.com/colonyops/taskboard/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		busCancel context.CancelFunc
		boardApp  = &board.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskboard",
		Usage:     "Read and manage task board card comments from the terminal",
		UsageText: "taskboard [global options] command [command options]",
		Description: `taskboard talks to the task board REST API. It lists, edits, deletes, and
posts card comments from the command line, and 'taskboard open' shows a
card's comments in an interactive pane that loads older comments as you
scroll.

Run 'taskboard mock-server' to serve an in-memory API for local use.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKBOARD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("TASKBOARD_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKBOARD_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "API base URL, overrides api.base_url",
				Sources:     cli.EnvVars("TASKBOARD_BASE_URL"),
				Destination: &flags.BaseURL,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "API bearer token, overrides api.token",
				Sources:     cli.EnvVars("TASKBOARD_TOKEN"),
				Destination: &flags.Token,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.BaseURL != "" {
				cfg.API.BaseURL = flags.BaseURL
			}
			if flags.Token != "" {
				cfg.API.Token = flags.Token
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			bus := eventbus.New(256)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()
			go bus.Start(busCtx)

			client, err := remote.New(remote.Options{
				BaseURL: cfg.API.BaseURL,
				Token:   cfg.API.Token,
				Timeout: cfg.API.Timeout,
				Breaker: remote.BreakerOptions{
					MaxRequests:  cfg.API.Breaker.MaxRequests,
					Interval:     cfg.API.Breaker.Interval,
					Timeout:      cfg.API.Breaker.Timeout,
					MinRequests:  cfg.API.Breaker.MinRequests,
					FailureRatio: cfg.API.Breaker.FailureRatio,
				},
			})
			if err != nil {
				return ctx, fmt.Errorf("create api client: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*boardApp = *board.NewApp(client, cfg, bus)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewCommentsCmd(flags, boardApp).Register(app)
	app = commands.NewTuiCmd(flags, boardApp).Register(app)
	app = commands.NewMockCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
