// Package logger builds the zerolog root logger from the log_config section.
package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/rs/zerolog"
)

const (
	fallbackMaxSizeMB  = 100
	fallbackMaxBackups = 3
)

// Options is the resolved form of config.LogConfig
type Options struct {
	Level      zerolog.Level
	Format     string
	Console    io.Writer
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// OptionsFromConfig resolves cfg. Console output goes to stderr so list mode
// can keep stdout for findings.
func OptionsFromConfig(cfg config.LogConfig) (Options, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Level:      level,
		Format:     ParseFormat(cfg.LogFormat),
		Console:    os.Stderr,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.MaxLogSizeMB,
		MaxBackups: cfg.MaxLogBackups,
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = fallbackMaxSizeMB
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = fallbackMaxBackups
	}
	return opts, nil
}

// New builds the application root logger from the log section
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return zerolog.Nop(), err
	}
	return Build(opts)
}

// Build creates a logger writing to the console and, when FilePath is set,
// to a rotating file. The standard library logger is redirected to it.
func Build(opts Options) (zerolog.Logger, error) {
	var sinks []io.Writer
	if opts.Console != nil {
		sinks = append(sinks, formatWriter(opts.Format, opts.Console, true))
	}
	if opts.FilePath != "" {
		file, err := rotatingFile(opts)
		if err != nil {
			return zerolog.Nop(), common.WrapError(err, "failed to create log file writer")
		}
		sinks = append(sinks, file)
	}
	if len(sinks) == 0 {
		return zerolog.Nop(), common.NewError("no output writers configured")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(opts.Level).
		With().
		Timestamp().
		Str("service", "leakwatch").
		Logger()

	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)

	return logger, nil
}

// ParseLevel parses a config log level, defaulting to info on empty input
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel, common.NewValidationError("log_level", levelStr, "unknown log level")
	}
	return level, nil
}

// ParseFormat normalizes a format name; anything unknown is console.
func ParseFormat(formatStr string) string {
	switch f := strings.ToLower(strings.TrimSpace(formatStr)); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatConsole
	}
}
