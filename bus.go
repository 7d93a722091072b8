package xbus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
)

// State is the lifecycle phase of a Bus. Transitions are forward-only:
// Starting → Running → Stopping → Stopped. Re-entry requires a fresh
// instance.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Bus is the asynchronous publish/subscribe dispatcher. Publish returns
// without waiting for any listener to process the event; a single
// dispatcher goroutine imposes a total order on accepted events, and
// every listener observes a prefix-consistent suffix of that order
// filtered by its predicate.
//
// The registry of active listeners is the only mutable shared state;
// subscription changes and lifecycle transitions are linearizable with
// respect to each other. Predicate matching reads an immutable snapshot
// swapped atomically on registration change.
type Bus struct {
	opts      Options
	collector Collector
	fallback  Sink

	thresholds atomic.Pointer[Thresholds]
	levelMu    sync.Mutex

	state    atomic.Int32
	in       chan *Event
	stopping chan struct{}
	dispDone chan struct{}
	stopOnce sync.Once

	subs    atomic.Value // []*Subscription, immutable snapshot
	subMu   sync.Mutex
	nextSub atomic.Uint64
	workers sync.WaitGroup

	st stats
}

func newBus(opts Options) *Bus {
	b := &Bus{
		opts:      opts,
		collector: opts.Collector,
		fallback:  opts.Fallback,
		in:        make(chan *Event, opts.QueueSize),
		stopping:  make(chan struct{}),
		dispDone:  make(chan struct{}),
	}
	th := NewThresholds(opts.DefaultLevel)
	for cat, min := range opts.CategoryLevels {
		th = th.WithCategory(cat, min)
	}
	b.thresholds.Store(th)
	b.subs.Store([]*Subscription(nil))
	b.state.Store(int32(StateStarting))
	return b
}

// State returns the current lifecycle phase.
func (b *Bus) State() State { return State(b.state.Load()) }

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() StatsSnapshot { return b.st.snapshot() }

// Enabled reports whether an event at the given level and category
// would currently be dispatched. Cheap; safe on every call site
// including disabled ones.
func (b *Bus) Enabled(l Level, cat Category) bool {
	return b.thresholds.Load().Enabled(l, cat)
}

// SetDefaultLevel swaps in a new global minimum severity.
func (b *Bus) SetDefaultLevel(min Level) {
	b.levelMu.Lock()
	defer b.levelMu.Unlock()
	b.thresholds.Store(b.thresholds.Load().WithDefault(min))
}

// SetCategoryLevel overrides the minimum severity for one category.
func (b *Bus) SetCategoryLevel(cat Category, min Level) {
	b.levelMu.Lock()
	defer b.levelMu.Unlock()
	b.thresholds.Store(b.thresholds.Load().WithCategory(cat, min))
}

// Start transitions Starting → Running and begins asynchronous
// dispatch. Before Start, published events reach only the synchronous
// fallback sink. Calling Start more than once is a no-op.
func (b *Bus) Start() {
	if !b.state.CompareAndSwap(int32(StateStarting), int32(StateRunning)) {
		return
	}
	go b.dispatch()
}

// Publish hands an event to the bus. In Running this enqueues for
// asynchronous fan-out and may block only momentarily (bounded inbound
// queue). In Starting and Stopping the event goes synchronously to the
// fallback sink, filtered by its own threshold. After Stopped, Publish
// is a documented no-op: logging past teardown is safe, just
// ineffective.
func (b *Bus) Publish(e *Event) {
	if e == nil {
		return
	}
	switch b.State() {
	case StateRunning:
		// The fallback path stays live in Running only when its
		// threshold was explicitly left above Off.
		wrote := false
		if b.opts.FallbackLevel != LevelOff {
			b.writeFallback(e)
			wrote = true
		}
		select {
		case b.in <- e:
			b.st.published.Add(1)
			b.collector.Published(e.Level)
		case <-b.stopping:
			if !wrote {
				b.writeFallback(e)
			}
		}
	case StateStarting, StateStopping:
		b.writeFallback(e)
	case StateStopped:
	}
}

// Subscribe registers a sink under an auto-generated listener name.
func (b *Bus) Subscribe(pred Predicate, sink Sink) (*Subscription, error) {
	return b.SubscribeNamed("", pred, sink)
}

// SubscribeNamed registers a sink with its own bounded queue and worker
// goroutine. Allowed in Starting and Running; once the bus begins
// stopping, registration fails with ErrStopped.
func (b *Bus) SubscribeNamed(name string, pred Predicate, sink Sink) (*Subscription, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if name == "" {
		name = fmt.Sprintf("listener-%d", b.nextSub.Add(1))
	}

	b.subMu.Lock()
	defer b.subMu.Unlock()
	if st := b.State(); st == StateStopping || st == StateStopped {
		return nil, ErrStopped
	}
	s := &Subscription{
		bus:   b,
		name:  name,
		pred:  pred,
		sink:  sink,
		q:     make(chan *Event, b.opts.ListenerQueueSize),
		done:  make(chan struct{}),
		drain: make(chan struct{}),
	}
	cur, _ := b.subs.Load().([]*Subscription)
	next := make([]*Subscription, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, s)
	b.subs.Store(next)

	b.workers.Add(1)
	go s.run()
	return s, nil
}

// Unsubscribe removes a subscription. Events already queued to it are
// discarded (and counted) as part of teardown. Unsubscribing an
// already-unsubscribed handle is a no-op.
func (b *Bus) Unsubscribe(s *Subscription) {
	if s == nil || s.bus != b {
		return
	}
	s.close()
}

// Stop transitions to Stopping, drains queued events to registered
// listeners up to the configured grace period, then abandons whatever
// remains with a summary through the fallback sink and settles in
// Stopped. Safe to call more than once; later calls are no-ops.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() {
		prev := State(b.state.Swap(int32(StateStopping)))
		close(b.stopping)
		if prev == StateRunning {
			// Dispatcher flushes its inbound queue, then exits.
			<-b.dispDone
			// A publisher that read Running just before the swap may
			// still have won the buffered send after that final flush;
			// whatever it left behind was accepted and is still owed
			// delivery.
			b.flushIn()
		}

		b.subMu.Lock()
		subs := b.snapshot()
		b.subMu.Unlock()
		for _, s := range subs {
			s.beginDrain()
		}

		drained := make(chan struct{})
		go func() {
			b.workers.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(b.opts.Grace):
			var remaining uint64
			for _, s := range subs {
				remaining += uint64(len(s.q))
			}
			for _, s := range subs {
				s.close()
			}
			if remaining > 0 {
				b.collector.Abandoned(remaining)
				b.writeFallback(b.selfEvent(LevelWarning,
					"shutdown grace period expired with {} undelivered event(s)", remaining))
			}
		}
		// Late stragglers from publishers that raced the state swap go
		// through the fallback; nothing accepted is left stranded.
		for {
			select {
			case e := <-b.in:
				b.writeFallback(e)
			default:
				b.state.Store(int32(StateStopped))
				return
			}
		}
	})
}

// Close implements io.Closer; it is Stop.
func (b *Bus) Close() error {
	b.Stop()
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.dispDone)
	for {
		select {
		case e := <-b.in:
			b.fanout(e)
		case <-b.stopping:
			b.flushIn()
			return
		}
	}
}

// flushIn empties the inbound queue through fan-out without blocking on
// new arrivals.
func (b *Bus) flushIn() {
	for {
		select {
		case e := <-b.in:
			b.fanout(e)
		default:
			return
		}
	}
}

func (b *Bus) fanout(e *Event) {
	subs := b.snapshot()
	for _, s := range subs {
		if s.pred != nil && !s.pred(e) {
			continue
		}
		s.offer(e)
	}
}

func (b *Bus) snapshot() []*Subscription {
	subs, _ := b.subs.Load().([]*Subscription)
	return subs
}

func (b *Bus) remove(s *Subscription) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	cur := b.snapshot()
	next := make([]*Subscription, 0, len(cur))
	for _, c := range cur {
		if c != s {
			next = append(next, c)
		}
	}
	b.subs.Store(next)
}

// writeFallback runs the synchronous baseline path, filtered by the
// independently configured startup/shutdown threshold.
func (b *Bus) writeFallback(e *Event) {
	if !e.Level.enabledAt(b.opts.FallbackLevel) {
		return
	}
	defer func() {
		// The fallback is the path of last resort; a failing baseline
		// sink must not crash the emitting goroutine.
		_ = recover()
	}()
	b.fallback.Consume(e, xclock.Now())
	b.st.fallbackWrites.Add(1)
}

func (b *Bus) selfEvent(l Level, template string, args ...any) *Event {
	return &Event{
		Level:          l,
		OriginName:     "EventBus",
		OriginCategory: CategoryBus,
		Template:       template,
		Args:           args,
		EmitGoroutine:  goroutineID(),
	}
}

// reportListenerFailure surfaces a listener panic as an ERROR event
// from the bus's own identity. Failures while consuming a bus-origin
// event are only counted, never re-reported, which bounds the
// recursion when the reporting sink itself is the faulty one.
func (b *Bus) reportListenerFailure(s *Subscription, e *Event, cause any) {
	b.st.listenerFailures.Add(1)
	b.collector.ListenerFailure(s.name)
	if e.OriginCategory == CategoryBus {
		return
	}
	ev := b.selfEvent(LevelError, "listener {} failed to process event from {}: {}",
		s.name, e.OriginName, cause)
	if b.State() != StateRunning {
		b.writeFallback(ev)
		return
	}
	// Non-blocking: the reporting worker must not wedge against a full
	// inbound queue while the dispatcher waits on this very listener.
	select {
	case b.in <- ev:
		b.st.published.Add(1)
		b.collector.Published(ev.Level)
	default:
		b.writeFallback(ev)
	}
}
