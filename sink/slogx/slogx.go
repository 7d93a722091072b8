// Package slogx bridges the bus to log/slog handlers. It builds
// slog.Attrs directly and emits through Handler.Handle for low
// overhead.
package slogx

import (
	"context"
	"log/slog"
	"time"

	"github.com/trickstertwo/xbus"
)

// Sink forwards events to a slog.Handler. The record's time carries
// the delivery timestamp; origin identity and emitting goroutine are
// attached as attributes.
type Sink struct {
	h slog.Handler
}

func New(h slog.Handler) *Sink {
	if h == nil {
		h = slog.Default().Handler()
	}
	return &Sink{h: h}
}

func toSlog(l xbus.Level) slog.Level {
	switch l {
	case xbus.LevelError:
		return slog.LevelError
	case xbus.LevelWarning:
		return slog.LevelWarn
	case xbus.LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func (s *Sink) Consume(e *xbus.Event, at time.Time) {
	lvl := toSlog(e.Level)
	if !s.h.Enabled(context.Background(), lvl) {
		return
	}
	rec := slog.NewRecord(at, lvl, e.Message(), 0)
	rec.AddAttrs(
		slog.String("origin", e.OriginName),
		slog.String("category", string(e.OriginCategory)),
		slog.Uint64("gid", e.EmitGoroutine),
	)
	if e.OriginPath != "" && e.OriginPath != e.OriginName {
		rec.AddAttrs(slog.String("path", e.OriginPath))
	}
	if !e.EmitTime.IsZero() {
		rec.AddAttrs(slog.Time("emit_ts", e.EmitTime))
	}
	for i := range e.Fields {
		rec.AddAttrs(toAttr(e.Fields[i]))
	}
	_ = s.h.Handle(context.Background(), rec)
}

func toAttr(f xbus.Field) slog.Attr {
	switch f.Kind {
	case xbus.KindString:
		return slog.String(f.K, f.StrVal())
	case xbus.KindInt64:
		return slog.Int64(f.K, f.Int64Val())
	case xbus.KindUint64:
		return slog.Uint64(f.K, f.Uint64Val())
	case xbus.KindFloat64:
		return slog.Float64(f.K, f.Float64Val())
	case xbus.KindBool:
		return slog.Bool(f.K, f.BoolVal())
	case xbus.KindDuration:
		return slog.Duration(f.K, f.DurVal())
	case xbus.KindTime:
		return slog.Time(f.K, f.TimeVal())
	case xbus.KindError:
		return slog.Any(f.K, f.ErrVal())
	case xbus.KindBytes:
		return slog.Any(f.K, f.BytesVal())
	default:
		return slog.Any(f.K, f.AnyVal())
	}
}
