package slogx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xbus"
)

func TestConsumeEmitsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	s.Consume(&xbus.Event{
		Level:          xbus.LevelWarning,
		OriginName:     "OrderService",
		OriginCategory: "app.OrderService",
		Template:       "retrying order {}",
		Args:           []any{41},
		EmitGoroutine:  9,
		Fields:         []xbus.Field{xbus.Str("request_id", "r-42"), xbus.Int64("attempt", 2)},
	}, at)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "retrying order 41", got["msg"])
	assert.Equal(t, "OrderService", got["origin"])
	assert.Equal(t, "app.OrderService", got["category"])
	assert.Equal(t, float64(9), got["gid"])
	assert.Equal(t, "r-42", got["request_id"])
	assert.Equal(t, float64(2), got["attempt"])
	assert.Contains(t, got["time"], "2025-03-14T09:26:53")
}

func TestHandlerLevelGate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s.Consume(&xbus.Event{Level: xbus.LevelDebug, OriginName: "svc", Template: "noise"}, time.Now())
	assert.Zero(t, buf.Len())

	s.Consume(&xbus.Event{Level: xbus.LevelError, OriginName: "svc", Template: "signal"}, time.Now())
	assert.Contains(t, buf.String(), "signal")
}

func TestLevelMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, toSlog(xbus.LevelError))
	assert.Equal(t, slog.LevelWarn, toSlog(xbus.LevelWarning))
	assert.Equal(t, slog.LevelInfo, toSlog(xbus.LevelInfo))
	assert.Equal(t, slog.LevelDebug, toSlog(xbus.LevelDebug))
}

func TestOptionalAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(slog.NewJSONHandler(&buf, nil))

	emit := time.Date(2025, 3, 14, 9, 26, 52, 0, time.UTC)
	s.Consume(&xbus.Event{
		Level:      xbus.LevelInfo,
		OriginName: "Widget",
		OriginPath: "app/widgets/Widget",
		Template:   "made",
		EmitTime:   emit,
	}, time.Now())

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "app/widgets/Widget", got["path"])
	assert.Contains(t, got["emit_ts"], "2025-03-14T09:26:52")
}
