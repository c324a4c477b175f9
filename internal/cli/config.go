package cli

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/splice/internal/utils"
)

// DefaultOutput is the plan document written when no output is configured
const DefaultOutput = "splice" + utils.PlanSuffix

// DefaultPaths is scanned when no path pattern is given
var DefaultPaths = []string{"./..."}

// Config holds the configuration for the CLI generator
type Config struct {
	// Paths are the path patterns scanned for descriptor documents.
	// A trailing "/..." scans recursively.
	Paths []string `mapstructure:"paths"`

	// ModuleName is stamped into the plan document.
	// If empty, it is read from the nearest go.mod file.
	ModuleName string `mapstructure:"module"`

	// Output is the plan document path
	Output string `mapstructure:"output"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `mapstructure:"verbose"`

	// Quiet only shows errors and final results
	Quiet bool `mapstructure:"quiet"`

	// Debug enables engine trace logging
	Debug bool `mapstructure:"debug"`

	// LazyWrappers replaces the generic wrapper names treated as deferred requests
	LazyWrappers []string `mapstructure:"lazy_wrappers"`
}

// Normalize fills defaults
func (c *Config) Normalize() {
	if len(c.Paths) == 0 {
		c.Paths = append([]string(nil), DefaultPaths...)
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if len(c.LazyWrappers) == 0 {
		c.LazyWrappers = nil
	}
}

// Validate checks flags that cannot be combined
func (c Config) Validate() error {
	if c.Verbose && c.Quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}
	if c.Output != "" && !strings.HasSuffix(c.Output, utils.PlanSuffix) {
		return fmt.Errorf("output %s must end with %s", c.Output, utils.PlanSuffix)
	}
	for _, wrapper := range c.LazyWrappers {
		if strings.TrimSpace(wrapper) == "" {
			return fmt.Errorf("lazy wrapper names cannot be empty")
		}
	}
	return nil
}

// DiagnosticLevel maps the output flags to a diagnostic level
func (c Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Debug:
		return utils.DiagnosticDebug
	case c.Verbose:
		return utils.DiagnosticVerbose
	default:
		return utils.DiagnosticInfo
	}
}

// Logger returns the engine trace logger: a development logger in debug mode
// and a no-op logger otherwise
func (c Config) Logger() (*zap.Logger, error) {
	if !c.Debug {
		return zap.NewNop(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, utils.WrapCreateError("debug logger", err)
	}
	return logger, nil
}
