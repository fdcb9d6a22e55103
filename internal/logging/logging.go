// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level to emit.
	Level zapcore.Level `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
	// Caller adds file:line of the log call site.
	Caller bool `koanf:"caller"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format %q (want json or console)", c.Format)
	}
	return nil
}

// New builds a zap logger writing to stdout.
func New(cfg Config) (*zap.Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		newEncoder(cfg.Format),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(cfg.Level),
	)

	var opts []zap.Option
	if cfg.Caller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}

// newEncoder creates a JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
