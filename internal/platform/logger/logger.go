package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap so the rest of the service never imports it directly
// except for field constructors.
type Logger struct {
	*zap.Logger
}

type Config struct {
	Level    string
	Encoding string
}

// New builds the service logger. Level falls back to info when the
// configured value does not parse.
func New(cfg Config) (*Logger, error) {
	var zapCfg zap.Config
	if cfg.Level == "debug" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if err := zapCfg.Level.UnmarshalText([]byte(cfg.Level)); err != nil {
		zapCfg.Level.SetLevel(zapcore.InfoLevel)
	}

	if cfg.Encoding == "console" || cfg.Encoding == "text" {
		zapCfg.Encoding = "console"
	} else {
		zapCfg.Encoding = "json"
	}

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{Logger: l}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named adds a path segment to the logger's name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// With adds structured context to every entry the returned logger writes.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}
