// Package zapx bridges the bus to go.uber.org/zap with low overhead.
// Importing it also registers the "zap" listener kind with the config
// package.
package zapx

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xbus"
)

// Sink forwards events to a zap.Logger.
//
// Uses Logger.Check to avoid building fields when the backend filters
// the level out, and writes the delivery timestamp as a "ts" string
// with RFC3339Nano precision regardless of encoder defaults.
type Sink struct {
	l *zap.Logger
}

func New(l *zap.Logger) *Sink {
	if l == nil {
		l = zap.NewNop()
	}
	return &Sink{l: l}
}

func (s *Sink) Consume(e *xbus.Event, at time.Time) {
	ce := s.l.Check(toZapLevel(e.Level), e.Message())
	if ce == nil {
		return
	}

	zfs := make([]zap.Field, 0, 4+len(e.Fields))
	zfs = append(zfs,
		zap.String("ts", at.UTC().Format(time.RFC3339Nano)),
		zap.String("origin", e.OriginName),
		zap.String("category", string(e.OriginCategory)),
		zap.Uint64("gid", e.EmitGoroutine),
	)
	if e.OriginPath != "" && e.OriginPath != e.OriginName {
		zfs = append(zfs, zap.String("path", e.OriginPath))
	}
	if !e.EmitTime.IsZero() {
		zfs = append(zfs, zap.Time("emit_ts", e.EmitTime))
	}
	for i := range e.Fields {
		zfs = append(zfs, toZapField(&e.Fields[i]))
	}
	ce.Write(zfs...)
}

// toZapLevel maps xbus severities onto zap. Avoids Fatal/DPanic to
// prevent exits in library code.
func toZapLevel(l xbus.Level) zapcore.Level {
	switch l {
	case xbus.LevelDebug:
		return zapcore.DebugLevel
	case xbus.LevelInfo:
		return zapcore.InfoLevel
	case xbus.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func toZapField(f *xbus.Field) zap.Field {
	switch f.Kind {
	case xbus.KindString:
		return zap.String(f.K, f.StrVal())
	case xbus.KindInt64:
		return zap.Int64(f.K, f.Int64Val())
	case xbus.KindUint64:
		return zap.Uint64(f.K, f.Uint64Val())
	case xbus.KindFloat64:
		return zap.Float64(f.K, f.Float64Val())
	case xbus.KindBool:
		return zap.Bool(f.K, f.BoolVal())
	case xbus.KindDuration:
		return zap.Duration(f.K, f.DurVal())
	case xbus.KindTime:
		return zap.Time(f.K, f.TimeVal())
	case xbus.KindError:
		err := f.ErrVal()
		if err == nil {
			return zap.Skip()
		}
		if f.K == "" || f.K == "error" {
			return zap.Error(err)
		}
		return zap.NamedError(f.K, err)
	case xbus.KindBytes:
		return zap.ByteString(f.K, f.BytesVal())
	case xbus.KindAny:
		return zap.Any(f.K, f.AnyVal())
	default:
		return zap.Skip()
	}
}
