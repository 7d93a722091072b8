package xbus

import (
	"fmt"
	"reflect"
	"sync"
)

// Category is the stable identifier derived from an origin's type, used
// for listener routing and per-category level thresholds. Raw string
// origins share the reserved CategoryString marker so listeners can look
// up string-identified sources differently than type-identified ones.
type Category string

const (
	// CategoryString marks events whose origin was supplied directly as
	// a string rather than a typed value.
	CategoryString Category = "xbus.StringSource"

	// CategoryBus marks the bus's own self-reports (listener failures,
	// shutdown summaries).
	CategoryBus Category = "xbus.Bus"
)

// Pathed is implemented by origins that carry a hierarchical identity,
// e.g. an addressable actor. Such origins are named by their path.
type Pathed interface {
	LogPath() string
}

// Resolver translates an origin value into a display name and routing
// category. Registered per concrete type via RegisterResolver.
type Resolver func(origin any) (name string, cat Category)

var (
	resolverMu sync.RWMutex
	resolvers  = map[reflect.Type]Resolver{}
)

// RegisterResolverType installs a resolver for the exact dynamic type t.
// Later registrations for the same type replace earlier ones.
func RegisterResolverType(t reflect.Type, r Resolver) {
	if t == nil || r == nil {
		return
	}
	resolverMu.Lock()
	resolvers[t] = r
	resolverMu.Unlock()
}

// RegisterResolver installs a typed resolver for T without requiring
// callers to spell out reflect types.
func RegisterResolver[T any](r func(T) (string, Category)) {
	RegisterResolverType(reflect.TypeOf((*T)(nil)).Elem(), func(origin any) (string, Category) {
		return r(origin.(T))
	})
}

func lookupResolver(t reflect.Type) (Resolver, bool) {
	resolverMu.RLock()
	r, ok := resolvers[t]
	resolverMu.RUnlock()
	return r, ok
}

// CategoryFor derives the stable category for a Go type: its
// package-qualified name, which is stable across runs of a build.
func CategoryFor(t reflect.Type) Category {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if pp := t.PkgPath(); pp != "" && t.Name() != "" {
		return Category(pp + "." + t.Name())
	}
	return Category(t.String())
}

// Resolve translates an arbitrary origin into (name, category, path).
// Resolution order:
//  1. a string origin: the string verbatim, CategoryString;
//  2. a type with a registered resolver: exactly that resolver;
//  3. a Pathed origin: its path as both name and identity;
//  4. anything else: the type's simple name.
//
// The permissive fallback (4) is skipped in strict mode, where an
// unresolved type is a bind-time configuration error.
func Resolve(origin any) (name string, cat Category, path string, err error) {
	return resolveOrigin(origin, false)
}

func resolveOrigin(origin any, strict bool) (name string, cat Category, path string, err error) {
	if origin == nil {
		return "", "", "", ErrNilOrigin
	}
	if s, ok := origin.(string); ok {
		return s, CategoryString, "", nil
	}
	t := reflect.TypeOf(origin)
	if r, ok := lookupResolver(t); ok {
		name, cat = r(origin)
		if p, ok := origin.(Pathed); ok {
			path = p.LogPath()
		}
		return name, cat, path, nil
	}
	if p, ok := origin.(Pathed); ok {
		path = p.LogPath()
		return path, CategoryFor(t), path, nil
	}
	if strict {
		return "", "", "", fmt.Errorf("%w: %s", ErrUnresolvedOrigin, t.String())
	}
	return simpleTypeName(t), CategoryFor(t), "", nil
}

func simpleTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}
