package xbus

import (
	"math"
	"time"
)

// Kind discriminates the value stored in a Field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindBool
	KindDuration
	KindTime
	KindError
	KindBytes
	KindAny
)

// Field is a typed key/value pair attached to events for structured
// enrichment. Numeric kinds share one packed word and strings their own
// slot, so the common constructors allocate nothing; only reference
// kinds (time, error, bytes, arbitrary values) ride in an interface.
// Sinks switch on Kind and read the matching accessor; a mismatched
// accessor returns the zero value.
type Field struct {
	K    string
	Kind Kind

	num   uint64
	str   string
	iface any
}

func Str(k, v string) Field           { return Field{K: k, Kind: KindString, str: v} }
func Int64(k string, v int64) Field   { return Field{K: k, Kind: KindInt64, num: uint64(v)} }
func Uint64(k string, v uint64) Field { return Field{K: k, Kind: KindUint64, num: v} }

func Float64(k string, v float64) Field {
	return Field{K: k, Kind: KindFloat64, num: math.Float64bits(v)}
}

func Bool(k string, v bool) Field {
	f := Field{K: k, Kind: KindBool}
	if v {
		f.num = 1
	}
	return f
}

func Dur(k string, v time.Duration) Field { return Field{K: k, Kind: KindDuration, num: uint64(v)} }
func Time(k string, v time.Time) Field    { return Field{K: k, Kind: KindTime, iface: v} }
func Err(k string, e error) Field         { return Field{K: k, Kind: KindError, iface: e} }
func Bytes(k string, b []byte) Field      { return Field{K: k, Kind: KindBytes, iface: b} }
func Any(k string, v any) Field           { return Field{K: k, Kind: KindAny, iface: v} }

func (f Field) StrVal() string        { return f.str }
func (f Field) Int64Val() int64       { return int64(f.num) }
func (f Field) Uint64Val() uint64     { return f.num }
func (f Field) Float64Val() float64   { return math.Float64frombits(f.num) }
func (f Field) BoolVal() bool         { return f.num != 0 }
func (f Field) DurVal() time.Duration { return time.Duration(f.num) }

func (f Field) TimeVal() time.Time {
	t, _ := f.iface.(time.Time)
	return t
}

func (f Field) ErrVal() error {
	e, _ := f.iface.(error)
	return e
}

func (f Field) BytesVal() []byte {
	b, _ := f.iface.([]byte)
	return b
}

func (f Field) AnyVal() any { return f.iface }

func copyFields(dst, src []Field) []Field {
	if len(src) == 0 {
		return dst
	}
	return append(dst, src...)
}
