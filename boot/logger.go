package boot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/junioryono/autowire"
)

// LoggerID is the identifier the Logger booter binds its logger under.
var LoggerID = autowire.TypeOf[zerolog.Logger]()

// LogConfig contains logging configuration.
type LogConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"` // json or console
	Output    string `yaml:"output" mapstructure:"output"` // stdout or stderr
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// Writer overrides Output when set.
	Writer io.Writer `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *LogConfig) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// Validate validates logging configuration.
func (c *LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log level %q: %w", c.Level, err)
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console (got: %s)", c.Format)
	}
	switch strings.ToLower(c.Output) {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("log output must be stdout or stderr (got: %s)", c.Output)
	}
	return nil
}

// NewLogger builds a zerolog logger from cfg.
func NewLogger(cfg LogConfig) (zerolog.Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return zerolog.Nop(), err
	}

	level, _ := zerolog.ParseLevel(cfg.Level)

	out := cfg.Writer
	if out == nil {
		out = os.Stdout
		if strings.ToLower(cfg.Output) == "stderr" {
			out = os.Stderr
		}
	}
	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.Writer != nil}
	}

	zl := zerolog.New(out).Level(level)
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}
	return zl, nil
}

// Logger returns a booter that builds a logger from cfg, installs it as the
// container's logger and binds it under LoggerID.
func Logger(cfg LogConfig) Booter {
	return func(ctx context.Context, app *App, next Next) error {
		zl, err := NewLogger(cfg)
		if err != nil {
			return err
		}

		app.SetLogger(zl)
		app.Bind(LoggerID).ToValue(zl)
		return next(ctx)
	}
}
