package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config controls level, encoding and destination of the service log.
type Config struct {
	Level      string
	Format     string
	OutputFile string
}

// ZapLevel converts the configured level name into a zapcore.Level, falling back to info.
func (c Config) ZapLevel() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (c Config) console() bool {
	f := strings.ToLower(c.Format)
	return f == "console" || f == "text"
}

func (c Config) toFile() bool {
	return c.OutputFile != "" && c.OutputFile != "stdout" && c.OutputFile != "stderr"
}
