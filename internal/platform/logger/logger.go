package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap so components can derive named children without importing zap config.
type Logger struct {
	*zap.Logger
	cfg Config
}

// New builds the service logger. JSON with ISO8601 timestamps unless Format asks for console output.
func New(cfg Config) (*Logger, error) {
	var zc zap.Config
	if cfg.ZapLevel() == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())

	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	if cfg.toFile() {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, cfg.OutputFile)
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, cfg.OutputFile)
	}

	if cfg.console() {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc.Encoding = "json"
	}

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{Logger: zl, cfg: cfg}, nil
}

// Wrap adapts an existing zap logger, mostly for tests (zap.NewNop, zaptest).
func Wrap(zl *zap.Logger) *Logger {
	return &Logger{Logger: zl}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return Wrap(zap.NewNop())
}

// Named adds a path segment to the logger name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), cfg: l.cfg}
}

// With adds structured context to the logger.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), cfg: l.cfg}
}
