package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xbus"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
level: debug
startupLevel: error
policy: drop-oldest
queueSize: 64
listenerQueueSize: 16
grace: 250ms
categoryLevels:
  app.Chatty: error
listeners:
  - kind: console
    name: out
    minLevel: warning
    output: stderr
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Level)
	assert.Equal(t, "error", c.StartupLevel)
	assert.Equal(t, "drop-oldest", c.Policy)
	assert.Equal(t, 64, c.QueueSize)
	assert.Equal(t, 16, c.ListenerQueueSize)
	assert.Equal(t, 250*time.Millisecond, c.Grace)
	assert.Equal(t, "error", c.CategoryLevels["app.Chatty"])
	require.Len(t, c.Listeners, 1)
	assert.Equal(t, "console", c.Listeners[0].Kind)
	assert.Equal(t, "out", c.Listeners[0].Name)
	assert.Equal(t, "warning", c.Listeners[0].MinLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("XBUS_LEVEL", "error")
	path := writeConfig(t, "level: debug\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", c.Level)
}

func TestLoadEnvOnlyDefaults(t *testing.T) {
	t.Setenv("XBUS_GRACE", "2s")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", c.Level)
	assert.Equal(t, "warning", c.StartupLevel)
	assert.Equal(t, "block", c.Policy)
	assert.Equal(t, 1024, c.QueueSize)
	assert.Equal(t, 256, c.ListenerQueueSize)
	assert.Equal(t, 2*time.Second, c.Grace)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func baseConfig() *Config {
	return &Config{
		Level:             "info",
		StartupLevel:      "warning",
		Policy:            "block",
		QueueSize:         64,
		ListenerQueueSize: 16,
		Grace:             time.Second,
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	c := baseConfig()
	c.Listeners = []Listener{{Kind: "carrier-pigeon"}}
	_, err := c.Build()
	assert.ErrorContains(t, err, `unknown listener kind "carrier-pigeon"`)
}

func TestBuildRejectsBadLevels(t *testing.T) {
	c := baseConfig()
	c.Level = "loud"
	_, err := c.Build()
	assert.Error(t, err)

	c = baseConfig()
	c.StartupLevel = "silent"
	_, err = c.Build()
	assert.ErrorContains(t, err, "startup level")

	c = baseConfig()
	c.CategoryLevels = map[string]string{"app": "shouty"}
	_, err = c.Build()
	assert.ErrorContains(t, err, "category app")

	c = baseConfig()
	c.Listeners = []Listener{{Kind: "console", MinLevel: "blaring"}}
	_, err = c.Build()
	assert.ErrorContains(t, err, `listener "console"`)
}

func TestBuildRejectsBadOutput(t *testing.T) {
	c := baseConfig()
	c.Listeners = []Listener{{Kind: "console", Output: "lineprinter"}}
	_, err := c.Build()
	assert.ErrorContains(t, err, "unknown output")
}

type captureSink struct {
	mu     sync.Mutex
	events []*xbus.Event
}

func (s *captureSink) Consume(e *xbus.Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestBuildWiresListeners(t *testing.T) {
	rec := &captureSink{}
	RegisterSink("capture", func(l Listener) (xbus.Sink, error) {
		return rec, nil
	})

	c := baseConfig()
	c.CategoryLevels = map[string]string{"app.Chatty": "off"}
	c.Listeners = []Listener{{Kind: "capture", Name: "cap", MinLevel: "warning"}}

	bus, err := c.Build()
	require.NoError(t, err)
	defer bus.Stop()
	require.Equal(t, xbus.StateRunning, bus.State())

	log := xbus.MustGetLogger(bus, "svc")
	log.Info("below the listener threshold")
	log.Error("above it")

	require.Eventually(t, func() bool { return rec.len() == 1 }, 2*time.Second, 2*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, xbus.LevelError, rec.events[0].Level)
	assert.Equal(t, "above it", rec.events[0].Message())
}

func TestListenerPredicateCombination(t *testing.T) {
	l := Listener{MinLevel: "warning", Category: "app.Orders"}
	pred, err := l.predicate()
	require.NoError(t, err)

	match := &xbus.Event{Level: xbus.LevelError, OriginCategory: "app.Orders"}
	wrongCat := &xbus.Event{Level: xbus.LevelError, OriginCategory: "app.Users"}
	tooQuiet := &xbus.Event{Level: xbus.LevelInfo, OriginCategory: "app.Orders"}

	assert.True(t, pred(match))
	assert.False(t, pred(wrongCat))
	assert.False(t, pred(tooQuiet))

	l = Listener{}
	pred, err = l.predicate()
	require.NoError(t, err)
	assert.Nil(t, pred)
}
