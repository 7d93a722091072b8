package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xbus"
)

func TestCollectorCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := MustNew(reg)

	c.Published(xbus.LevelInfo)
	c.Published(xbus.LevelInfo)
	c.Published(xbus.LevelError)
	c.Delivered("console", xbus.LevelInfo)
	c.Dropped("file")
	c.Blocked("file")
	c.ListenerFailure("flaky")
	c.Abandoned(4)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.published.WithLabelValues("info")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.published.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.delivered.WithLabelValues("console", "info")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.dropped.WithLabelValues("file")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.blocked.WithLabelValues("file")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.failures.WithLabelValues("flaky")))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.abandoned))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.ErrorContains(t, err, "register bus metrics")
	assert.Panics(t, func() { MustNew(reg) })
}

func TestCollectorObservesBusTraffic(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := MustNew(reg)

	bus, err := xbus.NewBuilder().
		WithCollector(c).
		WithFallbackLevel(xbus.LevelOff).
		Build()
	require.NoError(t, err)
	bus.Start()

	_, err = bus.SubscribeNamed("counted", xbus.MatchAll(), xbus.SinkFunc(
		func(e *xbus.Event, at time.Time) {}))
	require.NoError(t, err)

	log := xbus.MustGetLogger(bus, "svc")
	log.Info("one")
	log.Error("two")
	bus.Stop()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.published.WithLabelValues("info")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.published.WithLabelValues("error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.delivered.WithLabelValues("counted", "info")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.delivered.WithLabelValues("counted", "error")))
}
