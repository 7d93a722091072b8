// Package zerologx bridges the bus to rs/zerolog with low overhead.
// Importing it also registers the "zerolog" listener kind with the
// config package.
package zerologx

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xbus"
)

// Sink forwards events to a zerolog.Logger.
//
// The delivery timestamp is written as "ts" with RFC3339Nano precision
// as a string field, avoiding global zerolog time-format configuration
// and keeping output deterministic.
type Sink struct {
	l zerolog.Logger
}

func New(l zerolog.Logger) *Sink {
	return &Sink{l: l}
}

func (s *Sink) Consume(e *xbus.Event, at time.Time) {
	zlvl := mapLevel(e.Level)

	// Fast path: drop early if below the backend's min level, before
	// rendering the message or allocating a zerolog.Event.
	if zlvl < s.l.GetLevel() {
		return
	}

	ev := s.l.WithLevel(zlvl)
	ev.Str("ts", at.UTC().Format(time.RFC3339Nano))
	ev.Str("origin", e.OriginName)
	ev.Str("category", string(e.OriginCategory))
	ev.Uint64("gid", e.EmitGoroutine)
	if e.OriginPath != "" && e.OriginPath != e.OriginName {
		ev.Str("path", e.OriginPath)
	}
	if !e.EmitTime.IsZero() {
		ev.Str("emit_ts", e.EmitTime.UTC().Format(time.RFC3339Nano))
	}
	for i := range e.Fields {
		appendEventField(ev, &e.Fields[i])
	}
	ev.Msg(e.Message())
}

// mapLevel converts xbus.Level to zerolog.Level. There is no
// fatal/panic mapping; library code must not exit the process.
func mapLevel(l xbus.Level) zerolog.Level {
	switch l {
	case xbus.LevelDebug:
		return zerolog.DebugLevel
	case xbus.LevelInfo:
		return zerolog.InfoLevel
	case xbus.LevelWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func appendEventField(e *zerolog.Event, f *xbus.Field) {
	switch f.Kind {
	case xbus.KindString:
		e.Str(f.K, f.StrVal())
	case xbus.KindInt64:
		e.Int64(f.K, f.Int64Val())
	case xbus.KindUint64:
		e.Uint64(f.K, f.Uint64Val())
	case xbus.KindFloat64:
		e.Float64(f.K, f.Float64Val())
	case xbus.KindBool:
		e.Bool(f.K, f.BoolVal())
	case xbus.KindDuration:
		e.Dur(f.K, f.DurVal())
	case xbus.KindTime:
		e.Time(f.K, f.TimeVal())
	case xbus.KindError:
		if err := f.ErrVal(); err != nil {
			if f.K == "" || f.K == "error" {
				e.Err(err)
			} else {
				e.AnErr(f.K, err)
			}
		}
	case xbus.KindBytes:
		e.Bytes(f.K, f.BytesVal())
	case xbus.KindAny:
		e.Interface(f.K, f.AnyVal())
	default:
		e.Interface(f.K, nil)
	}
}
