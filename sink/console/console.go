// Package console renders events as single text lines on an io.Writer.
// It also provides the baseline synchronous fallback sink used by the
// bus lifecycle: importing this package registers a fallback factory
// with xbus.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trickstertwo/xbus"
)

func init() {
	xbus.RegisterFallbackFactory(func(w io.Writer) xbus.Sink {
		return New(w, Options{})
	})
}

// Options configures line rendering.
type Options struct {
	// TimeFormat for the delivery timestamp; default time.RFC3339Nano.
	TimeFormat string

	// LevelWriters routes specific levels to their own writer (e.g.
	// errors to stderr); unlisted levels use the sink's main writer.
	LevelWriters map[xbus.Level]io.Writer
}

// Sink writes one line per event. The bus already serializes calls per
// subscription; the mutex additionally makes a shared Sink instance
// safe when registered more than once or used as the fallback.
type Sink struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options
}

func New(w io.Writer, opts Options) *Sink {
	if w == nil {
		w = os.Stdout
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = time.RFC3339Nano
	}
	return &Sink{w: w, opts: opts}
}

// Stderr returns a sink writing to os.Stderr, the conventional choice
// for the lifecycle fallback.
func Stderr() *Sink { return New(os.Stderr, Options{}) }

func (s *Sink) Consume(e *xbus.Event, at time.Time) {
	var b strings.Builder
	b.Grow(128)

	b.WriteString("ts=")
	b.WriteString(at.UTC().Format(s.opts.TimeFormat))
	b.WriteString(" level=")
	b.WriteString(e.Level.String())
	b.WriteString(" origin=")
	appendString(&b, e.OriginName)
	if e.OriginCategory == xbus.CategoryString {
		b.WriteString(" string_origin=true")
	}
	if e.OriginPath != "" && e.OriginPath != e.OriginName {
		b.WriteString(" path=")
		appendString(&b, e.OriginPath)
	}
	b.WriteString(" gid=")
	b.WriteString(strconv.FormatUint(e.EmitGoroutine, 10))
	if !e.EmitTime.IsZero() {
		b.WriteString(" emit_ts=")
		b.WriteString(e.EmitTime.UTC().Format(s.opts.TimeFormat))
	}
	b.WriteString(" msg=")
	appendString(&b, e.Message())
	for i := range e.Fields {
		appendField(&b, &e.Fields[i])
	}
	b.WriteByte('\n')

	w := s.writerFor(e.Level)
	s.mu.Lock()
	_, _ = io.WriteString(w, b.String())
	s.mu.Unlock()
}

func (s *Sink) writerFor(l xbus.Level) io.Writer {
	if w, ok := s.opts.LevelWriters[l]; ok {
		return w
	}
	return s.w
}

func appendField(b *strings.Builder, f *xbus.Field) {
	b.WriteByte(' ')
	b.WriteString(f.K)
	b.WriteByte('=')
	switch f.Kind {
	case xbus.KindString:
		appendString(b, f.StrVal())
	case xbus.KindInt64:
		b.WriteString(strconv.FormatInt(f.Int64Val(), 10))
	case xbus.KindUint64:
		b.WriteString(strconv.FormatUint(f.Uint64Val(), 10))
	case xbus.KindFloat64:
		b.WriteString(strconv.FormatFloat(f.Float64Val(), 'g', -1, 64))
	case xbus.KindBool:
		b.WriteString(strconv.FormatBool(f.BoolVal()))
	case xbus.KindDuration:
		b.WriteString(f.DurVal().String())
	case xbus.KindTime:
		b.WriteString(f.TimeVal().UTC().Format(time.RFC3339Nano))
	case xbus.KindError:
		if err := f.ErrVal(); err != nil {
			appendString(b, err.Error())
		} else {
			b.WriteString("null")
		}
	case xbus.KindBytes:
		b.WriteString("len:")
		b.WriteString(strconv.Itoa(len(f.BytesVal())))
	default:
		if v := f.AnyVal(); v == nil {
			b.WriteString("null")
		} else {
			appendString(b, fmt.Sprint(v))
		}
	}
}

// appendString quotes only when necessary to keep lines grep-friendly.
func appendString(b *strings.Builder, s string) {
	if needsQuoting(s) {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.WriteString(s)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == '"' || c == '=' || c >= 0x7f {
			return true
		}
	}
	return false
}
