package commands

import (
	"bytes"
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/core/config"
)

func runConfigValidate(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := &cli.Command{
		Name:           "taskboard",
		Writer:         &out,
		ErrWriter:      &out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	NewConfigValidateCmd(&Flags{Config: &cfg}).Register(root)

	err := root.Run(context.Background(), append([]string{"taskboard", "config", "validate"}, args...))
	return out.String(), err
}

func TestConfigValidate_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.Token = "secret"

	out, err := runConfigValidate(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.NotContains(t, out, "warn")
}

func TestConfigValidate_WarningsDoNotFail(t *testing.T) {
	cfg := config.DefaultConfig()

	out, err := runConfigValidate(t, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "api.token")
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigValidate_InvalidJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.Token = "secret"
	cfg.API.BaseURL = "ftp://example.com"
	cfg.TUI.Theme = "no-such-theme"

	out, err := runConfigValidate(t, cfg, "--format", "json")
	require.Error(t, err)

	var result validationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"api.base_url", "tui.theme"}, fields)
}
