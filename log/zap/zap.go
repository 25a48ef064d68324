// Package zap adapts a *zap.Logger to litecache.Logger.
package zap

import (
	"github.com/unkn0wn-root/litecache"
	"go.uber.org/zap"
)

type ZapLogger struct{ L *zap.Logger }

var _ litecache.Logger = ZapLogger{}

// New wraps l, naming it "litecache" so cache events are easy to filter.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("litecache")} }

func (z ZapLogger) Debug(msg string, f litecache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f litecache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f litecache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f litecache.Fields) { z.L.Error(msg, zf(f)...) }

// Sync flushes buffered entries; the cache calls it on Close.
func (z ZapLogger) Sync() error { return z.L.Sync() }

func zf(f litecache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
