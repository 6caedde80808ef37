package core

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging surface used by the repository. Arguments
// after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// LogrusLogger adapts a logrus.FieldLogger to Logger.
type LogrusLogger struct {
	l logrus.FieldLogger
}

// NewLogrusLogger wraps l; a nil l uses the logrus standard logger.
func NewLogrusLogger(l logrus.FieldLogger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{l: l}
}

func (g *LogrusLogger) Debug(msg string, args ...any) { g.entry(args).Debug(msg) }
func (g *LogrusLogger) Info(msg string, args ...any)  { g.entry(args).Info(msg) }
func (g *LogrusLogger) Warn(msg string, args ...any)  { g.entry(args).Warn(msg) }
func (g *LogrusLogger) Error(msg string, args ...any) { g.entry(args).Error(msg) }

func (g *LogrusLogger) entry(args []any) logrus.FieldLogger {
	if len(args) == 0 {
		return g.l
	}
	return g.l.WithFields(fieldsFromArgs(args))
}

func fieldsFromArgs(args []any) logrus.Fields {
	fields := make(logrus.Fields, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		fields[key] = args[i+1]
	}
	return fields
}
