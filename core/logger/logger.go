// Package logger is a standardized event logging framework for the shell.
//
// Every interesting thing the shell does - launching a program, reaping a
// child, rejecting a line - is one JSON event. Events go to the configured
// app log, never to the interactive streams, so the log can be tailed while
// a session is running.
package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger writes shell lifecycle events as JSON lines.
type Logger struct {
	log zerolog.Logger
}

// New creates a logger writing to w at the given level. Unknown level
// strings fall back to info.
func New(w io.Writer, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return &Logger{
		log: zerolog.New(w).Level(lvl).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

// CommandStarted records a successful launch.
func (l *Logger) CommandStarted(pid int, argv []string, background bool) {
	l.log.Info().
		Int("pid", pid).
		Strs("argv", argv).
		Bool("background", background).
		Msg("command started")
}

// CommandNotFound records a program name that did not resolve.
func (l *Logger) CommandNotFound(command string, err error) {
	l.log.Warn().
		Str("command", command).
		Err(err).
		Msg("command not found")
}

// ProcessReaped records an observed child termination.
func (l *Logger) ProcessReaped(pid int, status string, background bool) {
	l.log.Info().
		Int("pid", pid).
		Str("status", status).
		Bool("background", background).
		Msg("process reaped")
}

// ReapError records a wait that failed outright.
func (l *Logger) ReapError(pid int, err error) {
	l.log.Warn().
		Int("pid", pid).
		Err(err).
		Msg("reap failed")
}

// ParseFailure records a line the parser rejected.
func (l *Logger) ParseFailure(line string, err error) {
	l.log.Warn().
		Str("line", line).
		Err(err).
		Msg("parse failure")
}

// LaunchFailure records a process-creation failure. The shell is on its way
// down when this fires.
func (l *Logger) LaunchFailure(argv []string, err error) {
	l.log.Error().
		Strs("argv", argv).
		Err(err).
		Msg("launch failure")
}

// BuiltinRan records a builtin invocation and its exit code.
func (l *Logger) BuiltinRan(name string, code int) {
	l.log.Debug().
		Str("builtin", name).
		Int("code", code).
		Msg("builtin ran")
}
