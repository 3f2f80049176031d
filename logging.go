package smpp

import (
	"io"
	"os"

	kitlog "github.com/go-kit/log"
)

// Logger is the structured logger capability the client runtime consumes.
// Grounded on absmach-magistrala/logger.Logger; accepts a flat message plus
// an even-length list of key/value pairs, the way naz's self._log accepts a
// dict-like payload.
type Logger interface {
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

var _ Logger = (*kitLogger)(nil)

type kitLogger struct {
	l kitlog.Logger
}

// NewLogger wraps a JSON go-kit logger writing to out, with a UTC
// timestamp field attached to every line.
func NewLogger(out io.Writer) Logger {
	l := kitlog.NewJSONLogger(kitlog.NewSyncWriter(out))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return &kitLogger{l: l}
}

// NewNopLogger returns a Logger that discards everything, for callers that
// don't want output but still need something satisfying the interface.
func NewNopLogger() Logger {
	return &kitLogger{l: kitlog.NewJSONLogger(kitlog.NewSyncWriter(io.Discard))}
}

// NewStderrLogger is a convenience constructor matching how most of the
// pack's cmd/ entrypoints wire up their default logger.
func NewStderrLogger() Logger {
	return NewLogger(os.Stderr)
}

func (k *kitLogger) Info(msg string, keyvals ...interface{}) {
	k.log("info", msg, keyvals...)
}

func (k *kitLogger) Warn(msg string, keyvals ...interface{}) {
	k.log("warn", msg, keyvals...)
}

func (k *kitLogger) Error(msg string, keyvals ...interface{}) {
	k.log("error", msg, keyvals...)
}

func (k *kitLogger) log(level, msg string, keyvals ...interface{}) {
	args := append([]interface{}{"level", level, "message", msg}, keyvals...)
	_ = k.l.Log(args...)
}
