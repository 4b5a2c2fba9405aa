package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newBase()
)

func newBase() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// L returns the shared sugared logger.
func L() *zap.SugaredLogger {
	return base.Sugar()
}

// SetLevel changes the level of every logger handed out by L.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Close flushes buffered entries.
func Close() {
	_ = base.Sync()
}
