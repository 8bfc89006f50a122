// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

// Config controls log level, destination and encoding.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" json:"level"`
	Debug  bool   `env:"LOG_DEBUG" envDefault:"false" json:"debug"`
	Output string `env:"LOG_OUTPUT" envDefault:"stdout" json:"output"`
	Format string `env:"LOG_FORMAT" envDefault:"json" json:"format"`
}

// Validate checks the configured values.
func (c Config) Validate() error {
	switch c.Output {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("LOG_OUTPUT must be stdout or stderr, got %q", c.Output)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Format)
	}
	if !c.Debug && c.Level != "" {
		if _, err := zerolog.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	return nil
}

func init() {
	globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init replaces the global logger according to config.
func Init(config Config) error {
	var output io.Writer = os.Stdout
	if config.Output == "stderr" {
		output = os.Stderr
	}

	logger, err := New(config, output)
	if err != nil {
		return err
	}

	globalLogger = logger
	log.Logger = globalLogger

	return nil
}

// New builds a logger writing to w without touching the global one.
func New(config Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	if config.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
