package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.API.Token = "secret"
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_RunsStructuralValidation(t *testing.T) {
	cfg := validConfig(t)
	cfg.Comments.PageSize = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comments.page_size")
}

func TestValidateDeep_InvalidBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{name: "missing scheme", baseURL: "board.example.com", wantErr: "scheme"},
		{name: "unsupported scheme", baseURL: "ftp://board.example.com", wantErr: "scheme"},
		{name: "missing host", baseURL: "http://", wantErr: "missing host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.API.BaseURL = tt.baseURL

			err := cfg.ValidateDeep("")

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, "api.base_url", fieldErrs[0].Field)
			assert.Contains(t, fieldErrs[0].Err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDeep_Breaker(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.Breaker.FailureRatio = 1.5
	cfg.API.Breaker.Interval = -time.Second

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Equal(t, "api.breaker.failure_ratio", fieldErrs[0].Field)
	assert.Equal(t, "api.breaker.interval", fieldErrs[1].Field)
}

func TestValidateDeep_BreakerShorterThanTimeout(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.Timeout = time.Minute
	cfg.API.Breaker.Timeout = 5 * time.Second

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "api.breaker.timeout", fieldErrs[0].Field)
}

func TestValidateDeep_UnknownTheme(t *testing.T) {
	cfg := validConfig(t)
	cfg.TUI.Theme = "neon"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "tui.theme", fieldErrs[0].Field)
}

func TestValidateDeep_ConfigFile(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "nope.yaml")))
	})

	t.Run("directory is rejected", func(t *testing.T) {
		cfg := validConfig(t)
		dir := t.TempDir()

		err := cfg.ValidateDeep(dir)

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "config_file", fieldErrs[0].Field)
		assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
	})

	t.Run("regular file is fine", func(t *testing.T) {
		cfg := validConfig(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
		assert.NoError(t, cfg.ValidateDeep(path))
	})
}

func TestWarnings(t *testing.T) {
	t.Run("no warnings for a complete config", func(t *testing.T) {
		cfg := validConfig(t)
		assert.Empty(t, cfg.Warnings())
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.API.Token = ""

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "api.token", warnings[0].Item)
	})

	t.Run("small client fetch size", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Comments.FetchSize = 10

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "comments.fetch_size", warnings[0].Item)
	})
}
