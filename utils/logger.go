package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goldfolio/goldfolio-api/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the application logger. Output "stdout", "file" or "both";
// file output is rotated by lumberjack.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	ctx := zerolog.New(outputWriter(cfg)).With().Timestamp()
	if cfg.EnableCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// NewComponentLogger returns a logger that also writes to its own rotating
// file, tagged with the component name.
func NewComponentLogger(cfg config.LoggingConfig, component, path string) zerolog.Logger {
	out := outputWriter(cfg)
	if path != "" {
		out = io.MultiWriter(out, rotatingFile(path, cfg))
	}
	return zerolog.New(out).With().Timestamp().Str("component", component).Logger()
}

func outputWriter(cfg config.LoggingConfig) io.Writer {
	var stdout io.Writer = os.Stdout
	if cfg.Format == "text" {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	switch cfg.Output {
	case "file":
		return rotatingFile(cfg.FilePath, cfg)
	case "both":
		return io.MultiWriter(stdout, rotatingFile(cfg.FilePath, cfg))
	default:
		return stdout
	}
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

func rotatingFile(path string, cfg config.LoggingConfig) io.Writer {
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}
