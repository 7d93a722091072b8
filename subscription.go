package xbus

import (
	"sync"
	"sync/atomic"

	"github.com/trickstertwo/xclock"
)

// Subscription is one registered listener: a predicate, a bounded
// ordered queue, and the backing sink drained by a single worker
// goroutine. Strict per-listener serialization: the sink never runs
// concurrently with itself.
type Subscription struct {
	bus  *Bus
	name string
	pred Predicate
	sink Sink

	q     chan *Event
	done  chan struct{} // closed on unsubscribe/forced teardown
	drain chan struct{} // closed on shutdown drain

	closeOnce sync.Once
	drainOnce sync.Once
	dropped   atomic.Uint64
}

// Name returns the listener identifier used in counters and metrics.
func (s *Subscription) Name() string { return s.name }

// Dropped returns how many events this listener lost to queue
// saturation under the DropOldest policy.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// offer hands an event to the listener queue, applying the configured
// saturation policy. Runs on the dispatcher goroutine.
func (s *Subscription) offer(e *Event) {
	select {
	case s.q <- e:
		return
	default:
	}

	switch s.bus.opts.Policy {
	case DropOldest:
		// Steal the oldest queued event to make room, then retry once.
		select {
		case <-s.q:
			s.recordDrop()
		default:
		}
		select {
		case s.q <- e:
		default:
			// Still full; the incoming event is the casualty.
			s.recordDrop()
		}
	default: // Block
		s.bus.st.blocked.Add(1)
		s.bus.collector.Blocked(s.name)
		select {
		case s.q <- e:
		case <-s.done:
			// Listener went away mid-block; the event is discarded as
			// part of its teardown, and counted.
			s.bus.st.abandoned.Add(1)
		case <-s.bus.stopping:
			// Shutdown began while the dispatcher was blocked here.
			// Waiting out the listener would hold Stop past its grace
			// deadline, so the event is abandoned and counted instead.
			s.bus.st.abandoned.Add(1)
		}
	}
}

func (s *Subscription) recordDrop() {
	s.dropped.Add(1)
	s.bus.st.dropped.Add(1)
	s.bus.collector.Dropped(s.name)
}

// run drains the queue until unsubscribed or shut down.
func (s *Subscription) run() {
	defer s.bus.workers.Done()
	for {
		select {
		case e := <-s.q:
			s.deliver(e)
		case <-s.done:
			s.discardQueued()
			return
		case <-s.drain:
			// Shutdown: the dispatcher has already flushed its inbound
			// queue, so whatever is buffered here is the remainder.
			for {
				select {
				case e := <-s.q:
					s.deliver(e)
				case <-s.done:
					s.discardQueued()
					return
				default:
					return
				}
			}
		}
	}
}

// deliver stamps the delivery timestamp and invokes the sink, isolating
// panics so one faulty listener cannot take down the bus or starve the
// others.
func (s *Subscription) deliver(e *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.bus.reportListenerFailure(s, e, r)
		}
	}()
	s.sink.Consume(e, xclock.Now())
	s.bus.st.delivered.Add(1)
	s.bus.collector.Delivered(s.name, e.Level)
}

// discardQueued empties the queue on teardown. Discarded events are
// counted, never left in limbo.
func (s *Subscription) discardQueued() {
	for {
		select {
		case <-s.q:
			s.bus.st.abandoned.Add(1)
		default:
			return
		}
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		s.bus.remove(s)
		close(s.done)
	})
}

func (s *Subscription) beginDrain() {
	s.drainOnce.Do(func() { close(s.drain) })
}
