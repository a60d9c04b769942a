// Package logger configures the zerolog logger shared by the application.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
	With().
	Timestamp().
	Logger()

type Config struct {
	Level   string
	LogFile string
	Console io.Writer
}

// Init builds the global logger. Console defaults to stderr; LogFile, when
// set, receives JSON lines in addition to the console output. The returned
// closer releases the log file.
func Init(config Config) (io.Closer, error) {
	level := zerolog.InfoLevel
	if config.Level != "" {
		parsed, err := zerolog.ParseLevel(config.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	console := config.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly, NoColor: console != os.Stderr}}
	var closer io.Closer = nopCloser{}

	if config.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o700); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
		closer = file
	}

	globalLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return closer, nil
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns the global logger tagged with a component field.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
