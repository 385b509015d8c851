package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/colonyops/taskboard/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// URL syntax, breaker settings, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("api.base_url", c.API.BaseURL, isHTTPURL),
		c.validateBreaker(),
		criterio.Run("tui.theme", c.TUI.Theme, isKnownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.API.Token == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "api.token",
			Message:  "no token configured; requests are sent without Authorization",
		})
	}

	if c.Comments.Paging == PagingClient && c.Comments.FetchSize < 100 {
		warnings = append(warnings, ValidationWarning{
			Category: "Comments",
			Item:     "comments.fetch_size",
			Message:  fmt.Sprintf("client paging only shows the first %d comments of a card", c.Comments.FetchSize),
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isHTTPURL validates that raw is an absolute http(s) URL.
func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func isKnownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

// validateBreaker checks circuit breaker thresholds.
func (c *Config) validateBreaker() error {
	b := c.API.Breaker
	var errs criterio.FieldErrorsBuilder

	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		errs = errs.Append("api.breaker.failure_ratio", fmt.Errorf("must be in (0, 1], got %v", b.FailureRatio))
	}
	if b.Interval < 0 {
		errs = errs.Append("api.breaker.interval", fmt.Errorf("cannot be negative"))
	}
	if b.Timeout < 0 {
		errs = errs.Append("api.breaker.timeout", fmt.Errorf("cannot be negative"))
	}
	if c.API.Timeout > 0 && b.Timeout > 0 && b.Timeout < c.API.Timeout {
		errs = errs.Append("api.breaker.timeout", fmt.Errorf("open period %s is shorter than api.timeout %s", b.Timeout, c.API.Timeout))
	}

	return errs.ToError()
}
