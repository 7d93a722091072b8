// Package config loads bus configuration from YAML and environment
// variables and assembles a running bus from a declarative listener
// list. Unknown listener kinds, bad level names, and unresolvable
// settings fail at Build time, before any event flows.
//
// Built-in kinds "console", "file", and "slog" are registered by this
// package. Further kinds (e.g. the zerolog and zap bridges) register
// themselves when their package is imported.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/trickstertwo/xbus"
)

// Listener describes one configured consumer of the bus.
type Listener struct {
	// Kind selects the sink factory: console, file, slog, or any
	// registered extension kind.
	Kind string `yaml:"kind"`

	// Name identifies the listener in counters and metrics; defaults
	// to "<kind>-<index>".
	Name string `yaml:"name"`

	// MinLevel filters delivery for this listener only; empty means
	// every level the bus dispatches.
	MinLevel string `yaml:"minLevel"`

	// Category restricts the listener to one origin category; empty
	// means all categories.
	Category string `yaml:"category"`

	// Output selects the writer for terminal kinds: stdout (default)
	// or stderr.
	Output string `yaml:"output"`

	// Format selects text (default) or json where the kind supports
	// both.
	Format string `yaml:"format"`

	// File rotation settings, used by the file kind.
	FilePath   string `yaml:"filePath"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// Config is the full bus configuration.
type Config struct {
	Level          string            `yaml:"level" env:"XBUS_LEVEL" env-default:"info"`
	CategoryLevels map[string]string `yaml:"categoryLevels"`
	StartupLevel   string            `yaml:"startupLevel" env:"XBUS_STARTUP_LEVEL" env-default:"warning"`

	Policy            string        `yaml:"policy" env:"XBUS_POLICY" env-default:"block"`
	QueueSize         int           `yaml:"queueSize" env:"XBUS_QUEUE_SIZE" env-default:"1024"`
	ListenerQueueSize int           `yaml:"listenerQueueSize" env:"XBUS_LISTENER_QUEUE_SIZE" env-default:"256"`
	Grace             time.Duration `yaml:"grace" env:"XBUS_GRACE" env-default:"5s"`

	CaptureEmitTime  bool `yaml:"captureEmitTime" env:"XBUS_CAPTURE_EMIT_TIME" env-default:"false"`
	StrictResolution bool `yaml:"strictResolution" env:"XBUS_STRICT_RESOLUTION" env-default:"false"`

	Listeners []Listener `yaml:"listeners"`
}

// Load reads the configuration file at path, then applies environment
// overrides. An empty path reads from the environment alone.
func Load(path string) (*Config, error) {
	var c Config
	if path == "" {
		if err := cleanenv.ReadEnv(&c); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
		return &c, nil
	}
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return &c, nil
}

// Build assembles a Bus from the configuration, subscribes every
// configured listener, and starts dispatch. Any configuration error is
// returned before the bus starts; the process should treat it as
// fatal.
func (c *Config) Build() (*xbus.Bus, error) {
	level, err := xbus.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	startup, err := xbus.ParseLevel(c.StartupLevel)
	if err != nil {
		return nil, fmt.Errorf("startup level: %w", err)
	}
	policy, err := xbus.ParsePolicy(c.Policy)
	if err != nil {
		return nil, err
	}

	b := xbus.NewBuilder().
		WithDefaultLevel(level).
		WithFallbackLevel(startup).
		WithPolicy(policy).
		WithQueueSize(c.QueueSize).
		WithListenerQueueSize(c.ListenerQueueSize).
		WithGrace(c.Grace).
		WithCaptureEmitTime(c.CaptureEmitTime).
		WithStrictResolution(c.StrictResolution)
	for cat, s := range c.CategoryLevels {
		l, err := xbus.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat, err)
		}
		b = b.WithCategoryLevel(xbus.Category(cat), l)
	}

	// Validate and instantiate every listener before subscribing any,
	// so a bad entry cannot leave a half-wired bus behind.
	type wired struct {
		name string
		pred xbus.Predicate
		sink xbus.Sink
	}
	ws := make([]wired, 0, len(c.Listeners))
	for i, lc := range c.Listeners {
		factory, ok := lookupFactory(lc.Kind)
		if !ok {
			return nil, fmt.Errorf("config: unknown listener kind %q", lc.Kind)
		}
		sink, err := factory(lc)
		if err != nil {
			return nil, fmt.Errorf("config: listener %q: %w", lc.Kind, err)
		}
		pred, err := lc.predicate()
		if err != nil {
			return nil, fmt.Errorf("config: listener %q: %w", lc.Kind, err)
		}
		name := lc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", lc.Kind, i)
		}
		ws = append(ws, wired{name: name, pred: pred, sink: sink})
	}

	bus, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, w := range ws {
		if _, err := bus.SubscribeNamed(w.name, w.pred, w.sink); err != nil {
			return nil, err
		}
	}
	bus.Start()
	return bus, nil
}

func (l Listener) predicate() (xbus.Predicate, error) {
	var min xbus.Level
	if l.MinLevel != "" {
		var err error
		if min, err = xbus.ParseLevel(l.MinLevel); err != nil {
			return nil, err
		}
	}
	cat := xbus.Category(l.Category)
	switch {
	case l.MinLevel == "" && l.Category == "":
		return nil, nil
	case l.Category == "":
		return xbus.MatchMinLevel(min), nil
	case l.MinLevel == "":
		return xbus.MatchCategory(cat), nil
	default:
		minPred := xbus.MatchMinLevel(min)
		catPred := xbus.MatchCategory(cat)
		return func(e *xbus.Event) bool { return minPred(e) && catPred(e) }, nil
	}
}
