package zerologx

import (
	"github.com/rs/zerolog"

	"github.com/trickstertwo/xbus"
	"github.com/trickstertwo/xbus/config"
)

func init() {
	config.RegisterSink("zerolog", func(l config.Listener) (xbus.Sink, error) {
		w, err := config.OutputWriter(l.Output)
		if err != nil {
			return nil, err
		}
		zl := zerolog.New(w)
		if l.Format == "console" {
			zl = zerolog.New(zerolog.ConsoleWriter{Out: w})
		}
		return New(zl), nil
	})
}
