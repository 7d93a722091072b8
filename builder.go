package xbus

import (
	"fmt"
	"time"
)

// SaturationPolicy governs a full listener queue. The same policy
// applies to every listener and is always observable through counters.
type SaturationPolicy uint8

const (
	// Block applies back-pressure: the dispatcher waits for room, which
	// eventually slows producers once the inbound queue fills. No event
	// accepted by the bus is ever lost.
	Block SaturationPolicy = iota

	// DropOldest discards the oldest queued event to make room and
	// counts the loss.
	DropOldest
)

func (p SaturationPolicy) String() string {
	switch p {
	case Block:
		return "block"
	case DropOldest:
		return "drop-oldest"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy converts a config string to a SaturationPolicy.
func ParsePolicy(s string) (SaturationPolicy, error) {
	switch s {
	case "", "block":
		return Block, nil
	case "drop-oldest", "dropOldest":
		return DropOldest, nil
	default:
		return Block, fmt.Errorf("xbus: unknown saturation policy %q", s)
	}
}

// Options is the bus configuration assembled by Builder.
type Options struct {
	// QueueSize bounds the dispatcher's inbound queue.
	QueueSize int

	// ListenerQueueSize bounds each listener's ordered delivery queue;
	// the saturation ceiling at which Policy applies.
	ListenerQueueSize int

	Policy SaturationPolicy

	// Grace bounds the Stopping drain phase.
	Grace time.Duration

	// DefaultLevel is the global minimum severity; CategoryLevels holds
	// per-category overrides.
	DefaultLevel   Level
	CategoryLevels map[Category]Level

	// FallbackLevel is the independent threshold of the synchronous
	// baseline path used in Starting and Stopping (and, when left above
	// Off, alongside Running dispatch). Boot and shutdown verbosity is
	// tuned here, not via DefaultLevel.
	FallbackLevel Level

	// Fallback is the baseline synchronous sink. When nil the builder
	// uses the registered fallback factory (see
	// RegisterFallbackFactory) or a minimal built-in stderr writer.
	Fallback Sink

	// CaptureEmitTime additionally records the emission-time clock
	// reading on each event. Off by default to keep the emission path
	// free of clock reads.
	CaptureEmitTime bool

	// StrictResolution turns the permissive simple-type-name fallback
	// of origin resolution into a bind-time configuration error.
	StrictResolution bool

	Collector Collector
}

// Builder separates bus construction from representation.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder preloaded with production defaults:
// info level, warning fallback threshold, Block policy, 5s grace.
func NewBuilder() *Builder {
	return &Builder{opts: Options{
		QueueSize:         1024,
		ListenerQueueSize: 256,
		Policy:            Block,
		Grace:             5 * time.Second,
		DefaultLevel:      LevelInfo,
		FallbackLevel:     LevelWarning,
	}}
}

func (b *Builder) WithQueueSize(n int) *Builder {
	b.opts.QueueSize = n
	return b
}

func (b *Builder) WithListenerQueueSize(n int) *Builder {
	b.opts.ListenerQueueSize = n
	return b
}

func (b *Builder) WithPolicy(p SaturationPolicy) *Builder {
	b.opts.Policy = p
	return b
}

func (b *Builder) WithGrace(d time.Duration) *Builder {
	b.opts.Grace = d
	return b
}

func (b *Builder) WithDefaultLevel(l Level) *Builder {
	b.opts.DefaultLevel = l
	return b
}

func (b *Builder) WithCategoryLevel(cat Category, l Level) *Builder {
	if b.opts.CategoryLevels == nil {
		b.opts.CategoryLevels = make(map[Category]Level)
	}
	b.opts.CategoryLevels[cat] = l
	return b
}

func (b *Builder) WithFallbackLevel(l Level) *Builder {
	b.opts.FallbackLevel = l
	return b
}

func (b *Builder) WithFallback(s Sink) *Builder {
	b.opts.Fallback = s
	return b
}

func (b *Builder) WithCaptureEmitTime(on bool) *Builder {
	b.opts.CaptureEmitTime = on
	return b
}

func (b *Builder) WithStrictResolution(on bool) *Builder {
	b.opts.StrictResolution = on
	return b
}

func (b *Builder) WithCollector(c Collector) *Builder {
	b.opts.Collector = c
	return b
}

// Build constructs a Bus in the Starting state. Subscribe listeners,
// then call Start to begin asynchronous dispatch.
func (b *Builder) Build() (*Bus, error) {
	opts := b.opts
	if opts.QueueSize <= 0 {
		return nil, fmt.Errorf("xbus: queue size must be positive, got %d", opts.QueueSize)
	}
	if opts.ListenerQueueSize <= 0 {
		return nil, fmt.Errorf("xbus: listener queue size must be positive, got %d", opts.ListenerQueueSize)
	}
	if opts.Grace <= 0 {
		return nil, fmt.Errorf("xbus: grace period must be positive, got %s", opts.Grace)
	}
	if opts.Collector == nil {
		opts.Collector = NopCollector{}
	}
	if opts.Fallback == nil {
		opts.Fallback = newDefaultFallback()
	}
	return newBus(opts), nil
}
