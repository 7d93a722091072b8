package xbus

import "errors"

var (
	// ErrNilSink is returned by Subscribe when no sink is supplied.
	ErrNilSink = errors.New("xbus: nil sink")

	// ErrNilOrigin is returned when a logger is bound to a nil origin.
	ErrNilOrigin = errors.New("xbus: nil origin")

	// ErrStopped is returned by Subscribe once the bus has begun
	// stopping; no new listeners are accepted past that point.
	ErrStopped = errors.New("xbus: bus is stopping or stopped")

	// ErrUnresolvedOrigin is returned by GetLogger in strict-resolution
	// mode when the origin's type has no registered resolver and no
	// built-in resolution applies. The binding fails loudly instead of
	// silently misattributing log origin.
	ErrUnresolvedOrigin = errors.New("xbus: no resolver registered for origin type")
)
