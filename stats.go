package xbus

import "sync/atomic"

type stats struct {
	published        atomic.Uint64
	delivered        atomic.Uint64
	dropped          atomic.Uint64
	blocked          atomic.Uint64
	listenerFailures atomic.Uint64
	abandoned        atomic.Uint64
	fallbackWrites   atomic.Uint64
}

// StatsSnapshot is a point-in-time counters snapshot. Saturation is
// never silent: every dropped event and every producer-side block shows
// up here.
type StatsSnapshot struct {
	Published        uint64
	Delivered        uint64
	Dropped          uint64
	Blocked          uint64
	ListenerFailures uint64
	Abandoned        uint64
	FallbackWrites   uint64
}

func (s *stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Published:        s.published.Load(),
		Delivered:        s.delivered.Load(),
		Dropped:          s.dropped.Load(),
		Blocked:          s.blocked.Load(),
		ListenerFailures: s.listenerFailures.Load(),
		Abandoned:        s.abandoned.Load(),
		FallbackWrites:   s.fallbackWrites.Load(),
	}
}
