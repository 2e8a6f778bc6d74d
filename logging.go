package activity

import (
	"fmt"
	"strings"

	"github.com/joeycumines/logiface"
)

// Logger is the structured logging interface the engine logs through. It is
// deliberately narrow: the engine only logs the panic guard's recovered
// failures and hooks that panicked (which are treated as returning true);
// everywhere else stays silent by default.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NewNoopLogger returns a Logger that discards everything. It is
// NewCollector's default when no WithLogger option is supplied.
func NewNoopLogger() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// logifaceLogger adapts a logiface generic Logger to the engine's Logger
// interface.
type logifaceLogger struct {
	l *logiface.Logger[logiface.Event]
}

// NewLogifaceLogger wraps a configured logiface logger (typically obtained
// via logiface.New[E](...).Logger()) for use as the engine's Logger.
func NewLogifaceLogger(l *logiface.Logger[logiface.Event]) Logger {
	return &logifaceLogger{l: l}
}

func (a *logifaceLogger) Debug(msg string, kv ...any) { a.l.Debug().Log(format(msg, kv)) }
func (a *logifaceLogger) Info(msg string, kv ...any)  { a.l.Info().Log(format(msg, kv)) }
func (a *logifaceLogger) Warn(msg string, kv ...any)  { a.l.Warning().Log(format(msg, kv)) }
func (a *logifaceLogger) Error(msg string, kv ...any) { a.l.Err(nil).Log(format(msg, kv)) }

func format(msg string, kv []any) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
