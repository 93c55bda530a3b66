package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/quiz-party/internal/config"
)

// maxLogSize is the size above which an existing log file is rotated on open.
const maxLogSize = 10 * 1024 * 1024

var (
	logFile *os.File
	logPath string
)

// Init configures the global zerolog logger for the server.
func Init(cfg config.LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}

	if cfg.File != "" {
		f, err := openRotated(cfg.File)
		if err != nil {
			return err
		}
		logFile = f
		logPath = cfg.File
		out = zerolog.MultiLevelWriter(out, f)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// InitFile sends all log output to ~/<appDir>/debug.log. The terminal client
// uses it because the UI owns the screen.
func InitFile(appDir string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	logDir := filepath.Join(homeDir, appDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "debug.log")
	f, err := openRotated(path)
	if err != nil {
		return err
	}
	logFile = f
	logPath = path

	log.Logger = zerolog.New(f).With().Timestamp().Caller().Logger()
	log.Info().Str("path", logPath).Msg("Logger initialized")
	return nil
}

func openRotated(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		backupPath := fmt.Sprintf("%s.%d", path, time.Now().Unix())
		_ = os.Rename(path, backupPath)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close closes the log file, if any
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// LogPanic logs a recovered panic with stack trace
func LogPanic(r any) {
	log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("[PANIC] recovered")
}

// Path returns the current log file path
func Path() string {
	return logPath
}
