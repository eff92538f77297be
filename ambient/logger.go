// Package ambient provides the operator-facing structured logging used by
// every component in this repository for startup, configuration, and
// failure diagnostics. This is deliberately separate from package tokenlog,
// which implements the device's own binary wire logger (the product, not
// the tool used to observe it while developing it).
package ambient

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging surface every component depends
// on, modeled on logiface-zerolog's thin-adapter shape: a small wrapper
// type in front of a concrete backend, so tests can pass a silent
// (Discard) or buffer-backed (New, NewJSON) Logger without touching call
// sites.
type Logger struct {
	z zerolog.Logger
}

// New wraps w (os.Stderr if nil) as a human-readable console logger.
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return Logger{z: zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}).With().Timestamp().Logger()}
}

// NewJSON wraps w as a line-delimited JSON logger, suitable for capture by
// automated test harnesses or log aggregation on the host side.
func NewJSON(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return Logger{z: zerolog.New(w).With().Timestamp().Logger()}
}

// Discard returns a Logger that drops everything, used as the zero-value
// default so components never need a nil check.
func Discard() Logger {
	return Logger{z: zerolog.Nop()}
}

// With returns a derived Logger with a persistent "component" field, used
// so every log line is attributable to one of C1-C7.
func (l Logger) With(component string) Logger {
	return Logger{z: l.z.With().Str("component", component).Logger()}
}

func (l Logger) Debug(msg string, fields map[string]any) { l.emit(l.z.Debug(), msg, fields) }
func (l Logger) Info(msg string, fields map[string]any)  { l.emit(l.z.Info(), msg, fields) }
func (l Logger) Warn(msg string, fields map[string]any)  { l.emit(l.z.Warn(), msg, fields) }
func (l Logger) Error(msg string, fields map[string]any) { l.emit(l.z.Error(), msg, fields) }

func (l Logger) emit(ev *zerolog.Event, msg string, fields map[string]any) {
	if ev == nil {
		return
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
