package xbus

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Sink consumes delivered events. The bus serializes calls per
// subscription: a sink registered once never runs concurrently with
// itself, though distinct sinks run concurrently with each other.
//
// 'at' is the authoritative delivery timestamp stamped by the listener
// worker; it reflects processing time, not emission time (see
// Event.EmitTime for the opt-in emission value).
type Sink interface {
	Consume(e *Event, at time.Time)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e *Event, at time.Time)

func (f SinkFunc) Consume(e *Event, at time.Time) { f(e, at) }

// Predicate selects which published events a subscription observes.
// A nil predicate matches everything. Predicates run on the dispatcher
// goroutine and must be cheap and side-effect free.
type Predicate func(e *Event) bool

// MatchAll matches every event.
func MatchAll() Predicate { return func(*Event) bool { return true } }

// MatchCategory matches events whose origin resolved to cat.
func MatchCategory(cat Category) Predicate {
	return func(e *Event) bool { return e.OriginCategory == cat }
}

// MatchMinLevel matches events at or above the given severity.
func MatchMinLevel(min Level) Predicate {
	return func(e *Event) bool { return e.Level.enabledAt(min) }
}

// fallbackFactory is set by a sink package (e.g. sink/console) in its
// init() to avoid import cycles; the builder uses it for the baseline
// synchronous sink when none is configured explicitly.
var (
	fallbackFactoryMu sync.Mutex
	fallbackFactory   func(w io.Writer) Sink
)

// RegisterFallbackFactory registers the constructor used for the
// default fallback sink. Sink packages call this from init().
func RegisterFallbackFactory(f func(w io.Writer) Sink) {
	fallbackFactoryMu.Lock()
	fallbackFactory = f
	fallbackFactoryMu.Unlock()
}

func newDefaultFallback() Sink {
	fallbackFactoryMu.Lock()
	f := fallbackFactory
	fallbackFactoryMu.Unlock()
	if f != nil {
		return f(os.Stderr)
	}
	return &basicFallback{w: os.Stderr}
}

// basicFallback is the sink of last resort when no richer fallback was
// registered. It exists so the core stays usable without importing any
// sink package.
type basicFallback struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *basicFallback) Consume(e *Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s [%s] %s\n",
		at.UTC().Format(time.RFC3339Nano), e.Level, e.OriginName, e.Message())
}
