package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultDir        = "logs"
	fileBufferSize    = 32 * 1024
	defaultServerName = "monitor"
)

type Options struct {
	// Name selects the log file, logs/<name>.log.
	Name  string
	Level string
	// Dir overrides the logs directory. Empty disables file output.
	Dir     string
	Console bool
}

// NewLogger builds the JSON logger shared by every component. The returned
// func flushes and closes the log file.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(ParseLevel(opts.Level))

	if opts.Dir == "" {
		logger.SetOutput(os.Stdout)
		return logger, func() {}, nil
	}

	name := opts.Name
	if name == "" {
		name = defaultServerName
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, nil, fmt.Errorf("invalid log name %q", name)
	}
	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile := filepath.Join(opts.Dir, name+".log")
	asyncWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(asyncWriter)

	if opts.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}

	return logger, asyncWriter.Close, nil
}

// DefaultOptions writes logs/<name>.log and mirrors to stdout.
func DefaultOptions(name, level string) Options {
	return Options{
		Name:    name,
		Level:   level,
		Dir:     defaultDir,
		Console: true,
	}
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Discard is a logger for code paths that must not write anywhere.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
