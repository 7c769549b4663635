// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log format and level.
type Options struct {
	// JSON switches to zap's production encoder for machine consumption.
	JSON bool
	// Verbose lowers the level to debug.
	Verbose bool
	// Output defaults to stderr so stdout stays reserved for command output.
	Output io.Writer
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	if opts.JSON && opts.Output == nil {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	encoder := newConsoleEncoder()
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), level)), nil
}

// newConsoleEncoder keeps human output short: level, message, fields.
func newConsoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
