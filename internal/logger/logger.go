package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap logger at the given level ("debug", "info", "warn",
// "error"). An empty level keeps the preset default.
func New(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(level string, development bool) *zap.Logger {
	log, err := New(level, development)
	if err != nil {
		panic(err)
	}
	return log
}
