package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/trickstertwo/xbus"
	"github.com/trickstertwo/xbus/sink/console"
	"github.com/trickstertwo/xbus/sink/rotate"
	"github.com/trickstertwo/xbus/sink/slogx"
)

// SinkFactory builds a sink from one listener entry.
type SinkFactory func(l Listener) (xbus.Sink, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]SinkFactory{}
)

// RegisterSink makes a kind available to Config.Build. Extension sink
// packages call this from init(); later registrations for the same
// kind replace earlier ones.
func RegisterSink(kind string, f SinkFactory) {
	if kind == "" || f == nil {
		return
	}
	factoryMu.Lock()
	factories[kind] = f
	factoryMu.Unlock()
}

func lookupFactory(kind string) (SinkFactory, bool) {
	factoryMu.RLock()
	f, ok := factories[kind]
	factoryMu.RUnlock()
	return f, ok
}

// OutputWriter resolves the conventional output names used by terminal
// listener kinds.
func OutputWriter(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("unknown output %q (want stdout or stderr)", output)
	}
}

func init() {
	RegisterSink("console", func(l Listener) (xbus.Sink, error) {
		w, err := OutputWriter(l.Output)
		if err != nil {
			return nil, err
		}
		return console.New(w, console.Options{}), nil
	})

	RegisterSink("file", func(l Listener) (xbus.Sink, error) {
		return rotate.New(rotate.Config{
			FilePath:   l.FilePath,
			MaxSize:    l.MaxSize,
			MaxBackups: l.MaxBackups,
			MaxAge:     l.MaxAge,
			Compress:   l.Compress,
		})
	})

	RegisterSink("slog", func(l Listener) (xbus.Sink, error) {
		w, err := OutputWriter(l.Output)
		if err != nil {
			return nil, err
		}
		switch l.Format {
		case "", "text":
			return slogx.New(slog.NewTextHandler(w, nil)), nil
		case "json":
			return slogx.New(slog.NewJSONHandler(w, nil)), nil
		default:
			return nil, fmt.Errorf("unknown format %q (want text or json)", l.Format)
		}
	})
}
