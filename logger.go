package xbus

import (
	"sync/atomic"

	"github.com/trickstertwo/xclock"
)

// Logger is a logging handle bound to a resolved origin. Binding
// resolves (name, category, path) once, up front; each log call then
// runs the level filter before any formatting or allocation happens.
type Logger struct {
	bus    *Bus
	name   string
	cat    Category
	path   string
	fields []Field
}

// GetLogger binds a logging handle to origin on the given bus. Origin
// resolution follows Resolve; in strict-resolution mode an unresolvable
// type fails here, loudly, before any event flows.
func GetLogger(b *Bus, origin any) (*Logger, error) {
	name, cat, path, err := resolveOrigin(origin, b.opts.StrictResolution)
	if err != nil {
		return nil, err
	}
	return &Logger{bus: b, name: name, cat: cat, path: path}, nil
}

// MustGetLogger is GetLogger that panics on a configuration error.
// Intended for package-level singletons where a refused bind should
// refuse startup.
func MustGetLogger(b *Bus, origin any) *Logger {
	l, err := GetLogger(b, origin)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the resolved origin display name.
func (l *Logger) Name() string { return l.name }

// Category returns the resolved origin category.
func (l *Logger) Category() Category { return l.cat }

// Path returns the origin's hierarchical identity, when it had one.
func (l *Logger) Path() string { return l.path }

// Enabled reports whether events at the given level would currently be
// dispatched for this handle's category. Use to avoid building
// expensive arguments in hot paths when disabled.
func (l *Logger) Enabled(lv Level) bool {
	return l.bus.Enabled(lv, l.cat)
}

// With returns a child handle carrying additional bound fields.
func (l *Logger) With(fs ...Field) *Logger {
	child := *l
	child.fields = append(copyFields(nil, l.fields), fs...)
	return &child
}

func (l *Logger) Error(template string, args ...any)   { l.log(LevelError, template, args) }
func (l *Logger) Warning(template string, args ...any) { l.log(LevelWarning, template, args) }
func (l *Logger) Info(template string, args ...any)    { l.log(LevelInfo, template, args) }
func (l *Logger) Debug(template string, args ...any)   { l.log(LevelDebug, template, args) }

func (l *Logger) log(lv Level, template string, args []any) {
	if !l.bus.Enabled(lv, l.cat) {
		return
	}
	e := &Event{
		Level:          lv,
		OriginName:     l.name,
		OriginCategory: l.cat,
		OriginPath:     l.path,
		Template:       template,
		Args:           args,
		Fields:         l.fields,
		EmitGoroutine:  goroutineID(),
	}
	if l.bus.opts.CaptureEmitTime {
		e.EmitTime = xclock.Now()
	}
	l.bus.Publish(e)
}

// Global bus access, for programs that want one process-wide bus.

var global atomic.Pointer[Bus]

// SetGlobal installs the process-wide Bus.
func SetGlobal(b *Bus) { global.Store(b) }

// G returns the global Bus; panics if unset to surface misconfig early.
func G() *Bus {
	b := global.Load()
	if b == nil {
		panic("xbus: global bus not set. Build one and call xbus.SetGlobal(...)")
	}
	return b
}

// For binds a handle to origin on the global bus, panicking on a
// configuration error the way MustGetLogger does.
func For(origin any) *Logger { return MustGetLogger(G(), origin) }
