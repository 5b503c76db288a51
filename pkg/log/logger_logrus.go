package log

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// requestIDKey is set by the server access log so every line of a request can
// be correlated.
type requestIDKey struct{}

// WithRequestID returns a context whose log lines carry the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger writes text logs to stdout at the given level.
func NewLogrusLogger(level string) (*LogrusLogger, error) {
	return NewLogrusLoggerTo(os.Stdout, level)
}

func NewLogrusLoggerTo(out io.Writer, level string) (*LogrusLogger, error) {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)

	return &LogrusLogger{entry: logrus.NewEntry(l)}, nil
}

// With returns a logger that adds a fixed field to every line.
func (l *LogrusLogger) With(key string, value interface{}) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) fields(ctx context.Context) *logrus.Entry {
	e := l.entry
	if ctx == nil {
		return e
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		e = e.WithField("request_id", id)
	}
	return e
}

func (l *LogrusLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).Infof(format, args...)
}

func (l *LogrusLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).WithField("severity", "alert").Errorf(format, args...)
}

func (l *LogrusLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).Errorf(format, args...)
}

func (l *LogrusLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).Warnf(format, args...)
}

func (l *LogrusLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).Debugf(format, args...)
}

func (l *LogrusLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).WithField("severity", "notice").Infof(format, args...)
}

// Critical and Emergency never exit the process; callers decide that.
func (l *LogrusLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).WithField("severity", "critical").Errorf(format, args...)
}

func (l *LogrusLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.fields(ctx).WithField("severity", "emergency").Errorf(format, args...)
}

// SetLevel changes the level of this logger and every logger derived from it.
func (l *LogrusLogger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.entry.Logger.SetLevel(lvl)
	return nil
}
