// Package logrus adapts a *logrus.Entry to litecache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/litecache"
)

type LogrusLogger struct{ E *logrus.Entry }

var _ litecache.Logger = LogrusLogger{}

// New wraps l with a component=litecache field.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "litecache")}
}

func (l LogrusLogger) Debug(msg string, f litecache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f litecache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Info(msg)
}
func (l LogrusLogger) Warn(msg string, f litecache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Warn(msg)
}
func (l LogrusLogger) Error(msg string, f litecache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
