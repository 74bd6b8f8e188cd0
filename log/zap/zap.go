package zap

import (
	"github.com/unkn0wn-root/tiercache"
	"go.uber.org/zap"
)

// Logger adapts a *zap.Logger to the tiercache.Logger interface.
type Logger struct{ L *zap.Logger }

var _ tiercache.Logger = Logger{}

func (z Logger) Debug(msg string, f tiercache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f tiercache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f tiercache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f tiercache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f tiercache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
