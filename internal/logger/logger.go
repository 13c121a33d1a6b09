// Package logger builds the zap logger shared by every command and the
// structured fields that tie log lines to a provider or an analysis run.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console or JSON logger writing to stderr, so that stdout stays
// reserved for command output such as the analysis result. Every entry carries
// the command name when one is given.
func New(json bool, debug bool, command string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	if command != "" {
		cfg.InitialFields = map[string]any{FieldCommand: command}
	}
	// Debug runs report where a line was logged; normal runs keep lines short.
	cfg.DisableCaller = !debug

	return cfg.Build()
}
