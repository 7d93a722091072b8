// Package prom implements xbus.Collector on Prometheus counters so the
// host process can scrape bus throughput and saturation.
package prom

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trickstertwo/xbus"
)

// Collector exports bus signals as Prometheus metrics under the "xbus"
// namespace.
type Collector struct {
	published *prometheus.CounterVec
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	blocked   *prometheus.CounterVec
	failures  *prometheus.CounterVec
	abandoned prometheus.Counter
}

var _ xbus.Collector = (*Collector)(nil)

// New registers the bus metrics with reg and returns the collector.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "events_published_total",
			Help:      "Events accepted by the bus for asynchronous dispatch",
		}, []string{"level"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "events_delivered_total",
			Help:      "Events handed to a listener sink",
		}, []string{"listener", "level"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "events_dropped_total",
			Help:      "Events lost to listener queue saturation under the drop-oldest policy",
		}, []string{"listener"}),
		blocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "dispatch_blocked_total",
			Help:      "Times the dispatcher blocked on a saturated listener queue",
		}, []string{"listener"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "listener_failures_total",
			Help:      "Panics recovered while a listener processed an event",
		}, []string{"listener"}),
		abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "xbus",
			Name:      "events_abandoned_total",
			Help:      "Events abandoned when the shutdown grace period expired",
		}),
	}
	for _, m := range []prometheus.Collector{
		c.published, c.delivered, c.dropped, c.blocked, c.failures, c.abandoned,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("prom: register bus metrics: %w", err)
		}
	}
	return c, nil
}

// MustNew is New that panics on registration error; convenient with a
// fresh registry.
func MustNew(reg prometheus.Registerer) *Collector {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) Published(l xbus.Level) {
	c.published.WithLabelValues(l.String()).Inc()
}

func (c *Collector) Delivered(listener string, l xbus.Level) {
	c.delivered.WithLabelValues(listener, l.String()).Inc()
}

func (c *Collector) Dropped(listener string) {
	c.dropped.WithLabelValues(listener).Inc()
}

func (c *Collector) Blocked(listener string) {
	c.blocked.WithLabelValues(listener).Inc()
}

func (c *Collector) ListenerFailure(listener string) {
	c.failures.WithLabelValues(listener).Inc()
}

func (c *Collector) Abandoned(count uint64) {
	c.abandoned.Add(float64(count))
}
