package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/core/styles"
	"github.com/colonyops/taskboard/internal/jsoncolor"
	"github.com/colonyops/taskboard/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskboard config validate [options]",
				Description: "Validates the configuration file, checking the API URL, breaker settings, and theme.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	result := validationResult{Warnings: cfg.Warnings()}

	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.Errors = append(result.Errors, validationError{Field: fe.Field, Message: fe.Err.Error()})
			}
		} else {
			result.Errors = append(result.Errors, validationError{Message: err.Error()})
		}
	}
	result.Valid = len(result.Errors) == 0

	out := c.Root().Writer
	switch {
	case cmd.format == "json" && isTerminal(out):
		bits, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, jsoncolor.Colorize(bits))
	case cmd.format == "json":
		if err := iojson.WriteWith(out, c.Root().ErrWriter, result); err != nil {
			return err
		}
	default:
		printResult(out, result)
	}

	if !result.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func printResult(w io.Writer, result validationResult) {
	for _, warn := range result.Warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextWarningStyle.Render("warn"), warn.Item, warn.Message)
	}
	for _, e := range result.Errors {
		if e.Field != "" {
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextErrorStyle.Render("error"), e.Field, e.Message)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextErrorStyle.Render("error"), e.Message)
	}

	if result.Valid {
		_, _ = fmt.Fprintln(w, styles.TextSuccessStyle.Render("Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintln(w, styles.TextErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(result.Errors))))
}
