package yewdux

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is an interface for logging scope activity.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogrusLogger adapts a logrus entry to Logger.
// Args are interpreted as alternating key/value pairs.
func LogrusLogger(entry *logrus.Entry) Logger {
	return &logrusLogger{entry: entry}
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(msg string, args ...any) {
	l.with(args).Debug(msg)
}

func (l *logrusLogger) Info(msg string, args ...any) {
	l.with(args).Info(msg)
}

func (l *logrusLogger) Error(msg string, args ...any) {
	l.with(args).Error(msg)
}

func (l *logrusLogger) with(args []any) *logrus.Entry {
	if len(args) == 0 {
		return l.entry
	}

	fields := make(logrus.Fields, len(args)/2+1)
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	if len(args)%2 == 1 {
		fields["!BADKEY"] = args[len(args)-1]
	}

	return l.entry.WithFields(fields)
}
