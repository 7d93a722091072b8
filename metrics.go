package xbus

// Collector receives bus throughput signals for an external metrics
// backend. Implementations must be concurrency-safe; methods are called
// on hot paths and should be cheap. NopCollector is the default.
type Collector interface {
	Published(l Level)
	Delivered(listener string, l Level)
	Dropped(listener string)
	Blocked(listener string)
	ListenerFailure(listener string)
	Abandoned(count uint64)
}

// NopCollector discards all signals.
type NopCollector struct{}

func (NopCollector) Published(Level)         {}
func (NopCollector) Delivered(string, Level) {}
func (NopCollector) Dropped(string)          {}
func (NopCollector) Blocked(string)          {}
func (NopCollector) ListenerFailure(string)  {}
func (NopCollector) Abandoned(uint64)        {}
