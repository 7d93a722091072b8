package xbus

import (
	"sync"
	"time"
)

// Event is an immutable log event. Once published it is only read;
// consumers share the same instance without synchronization.
//
// The rendered message is materialized lazily: the emission hot path
// only captures template and arguments, substitution runs on first
// Message() call, after level filtering has already passed.
type Event struct {
	Level          Level
	OriginName     string
	OriginCategory Category

	// OriginPath is the richer hierarchical identity when the origin
	// carried one (see Pathed); empty otherwise.
	OriginPath string

	Template string
	Args     []any

	// Fields are structured key/value pairs bound on the emitting
	// Logger.
	Fields []Field

	// EmitGoroutine identifies the goroutine that emitted the event,
	// captured at emission time.
	EmitGoroutine uint64

	// EmitTime is the emission-time clock reading. Zero unless the bus
	// was built with CaptureEmitTime; the authoritative timestamp a
	// sink receives is the delivery-time value passed to Consume.
	EmitTime time.Time

	renderOnce sync.Once
	rendered   string
}

// Message renders the template with the event's arguments, memoized on
// first call. Safe for concurrent use.
func (e *Event) Message() string {
	e.renderOnce.Do(func() {
		e.rendered = Format(e.Template, e.Args...)
	})
	return e.rendered
}
