package xbus

import (
	"fmt"
	"strings"
)

// Level is the ordered severity of a log event:
// LevelOff < LevelError < LevelWarning < LevelInfo < LevelDebug.
// LevelOff never dispatches; as a threshold it disables a path entirely.
type Level int8

const (
	LevelOff Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel converts a config string to a Level. "warn" is accepted as
// an alias for "warning".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("xbus: unknown level %q", s)
	}
}

// enabledAt reports whether an event at level l passes threshold min.
func (l Level) enabledAt(min Level) bool {
	return l != LevelOff && l <= min
}
