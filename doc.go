// Package xbus is an asynchronous log-event bus for concurrent,
// message-driven programs.
//
// Producers obtain a Logger bound to an origin (any value: a string, an
// addressable entity, or an arbitrary type) and emit events through it.
// Emission never blocks on I/O: events flow through a central Bus that
// fans them out to independently subscribed listeners, each draining its
// own ordered queue. Every listener observes a prefix-consistent suffix
// of the single global publish order, filtered by its predicate.
//
// The bus has an explicit lifecycle (Starting, Running, Stopping,
// Stopped). Outside Running, a synchronous fallback sink with its own
// level threshold catches events so nothing is silently lost at boot or
// during shutdown. Publish after Stopped is a safe no-op.
//
// Timestamps are read through github.com/trickstertwo/xclock so tests
// can freeze time. The delivery timestamp handed to a sink reflects
// listener-processing time, not emission time; enable CaptureEmitTime to
// also carry the emission-time value on each event.
package xbus
