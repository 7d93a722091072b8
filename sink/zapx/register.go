package zapx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xbus"
	"github.com/trickstertwo/xbus/config"
)

func init() {
	config.RegisterSink("zap", func(l config.Listener) (xbus.Sink, error) {
		w, err := config.OutputWriter(l.Output)
		if err != nil {
			return nil, err
		}
		encCfg := zap.NewProductionEncoderConfig()
		// The bus injects its own "ts"; drop zap's duplicate time key.
		encCfg.TimeKey = ""
		var enc zapcore.Encoder
		if l.Format == "console" {
			enc = zapcore.NewConsoleEncoder(encCfg)
		} else {
			enc = zapcore.NewJSONEncoder(encCfg)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
		return New(zap.New(core)), nil
	})
}
