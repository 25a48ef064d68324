package litecache

import (
	"go.uber.org/zap"
)

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger is a tiny leveled logger. Provide an adapter around your logging stack
// (see log/zap, log/logrus, log/slog). Logging never affects cache behavior.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

// zapLogger is the logger built from Config.Log when none is injected.
type zapLogger struct{ l *zap.Logger }

func newZapLogger(opts LogOptions) (zapLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	if !opts.Timestamp {
		cfg.EncoderConfig.TimeKey = ""
	}
	l, err := cfg.Build()
	if err != nil {
		return zapLogger{}, err
	}
	if opts.Prefix != "" {
		l = l.Named(opts.Prefix)
	}
	return zapLogger{l: l}, nil
}

func (z zapLogger) Debug(msg string, f Fields) { z.l.Debug(msg, zapFields(f)...) }
func (z zapLogger) Info(msg string, f Fields)  { z.l.Info(msg, zapFields(f)...) }
func (z zapLogger) Warn(msg string, f Fields)  { z.l.Warn(msg, zapFields(f)...) }
func (z zapLogger) Error(msg string, f Fields) { z.l.Error(msg, zapFields(f)...) }

func (z zapLogger) Sync() error { return z.l.Sync() }

func zapFields(f Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
