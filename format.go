package xbus

import (
	"fmt"
	"reflect"
	"strings"
)

// Placeholder syntax: positional "{}", consumed left to right.
const placeholder = "{}"

// Unresolved is substituted for placeholders that have no matching
// argument. An arity mismatch never fails a log call.
const Unresolved = "<unresolved>"

// Format substitutes positional placeholders in template with args.
//
// A single argument that is a slice or array (but not a string or
// []byte) is expanded element-wise, so logging one array broken out is
// identical to passing its elements individually. Excess arguments
// append a diagnostic suffix to the same line; missing arguments render
// as Unresolved.
func Format(template string, args ...any) string {
	args = expandSingleSequence(args)
	if len(args) == 0 && !strings.Contains(template, placeholder) {
		return template
	}

	var b strings.Builder
	b.Grow(len(template) + 16*len(args))

	rest := template
	used := 0
	for {
		i := strings.Index(rest, placeholder)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		if used < len(args) {
			writeArg(&b, args[used])
			used++
		} else {
			b.WriteString(Unresolved)
		}
		rest = rest[i+len(placeholder):]
	}

	if extra := len(args) - used; extra > 0 {
		if extra == 1 {
			b.WriteString(" <diagnostic: 1 extra argument>")
		} else {
			fmt.Fprintf(&b, " <diagnostic: %d extra arguments>", extra)
		}
	}
	return b.String()
}

func writeArg(b *strings.Builder, arg any) {
	switch v := arg.(type) {
	case string:
		b.WriteString(v)
	case fmt.Stringer:
		b.WriteString(v.String())
	case error:
		b.WriteString(v.Error())
	default:
		fmt.Fprint(b, v)
	}
}

// expandSingleSequence implements the "one array, broken out" rule:
// exactly one argument that is a slice or array becomes one argument
// per element. Strings and raw bytes are scalar values, not sequences.
func expandSingleSequence(args []any) []any {
	if len(args) != 1 || args[0] == nil {
		return args
	}
	switch args[0].(type) {
	case string, []byte:
		return args
	}
	v := reflect.ValueOf(args[0])
	if k := v.Kind(); k != reflect.Slice && k != reflect.Array {
		return args
	}
	out := make([]any, v.Len())
	for i := range out {
		out[i] = v.Index(i).Interface()
	}
	return out
}
