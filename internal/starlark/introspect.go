// Package starlark adapts Starlark values to the core introspection contract.
package starlark

import (
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// BuiltinsNamespace is the namespace under which universe builtins are listed.
const BuiltinsNamespace = "builtins"

// Callable wraps a Starlark callable so it can be introspected.
type Callable struct {
	value starlark.Callable
}

// Wrap returns an introspectable view of v.
func Wrap(v starlark.Callable) *Callable {
	return &Callable{value: v}
}

// ParameterNames returns the named, bindable parameters of the callable.
// Builtins implemented in Go carry no parameter metadata and yield an empty list.
func (c *Callable) ParameterNames() []string {
	fn, ok := c.value.(*starlark.Function)
	if !ok {
		return []string{}
	}
	return FunctionParams(fn)
}

// Opaque reports whether the callable exposes no parameter metadata.
func (c *Callable) Opaque() bool {
	_, ok := c.value.(*starlark.Function)
	return !ok
}

// FunctionParams extracts the parameter names of a Starlark function.
//
// The resolver binds *args and **kwargs after every named parameter, so the
// named ones (including keyword-only) occupy the leading indices.
func FunctionParams(fn *starlark.Function) []string {
	n := fn.NumParams()
	if fn.HasVarargs() {
		n--
	}
	if fn.HasKwargs() {
		n--
	}

	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, _ := fn.Param(i)
		names = append(names, name)
	}
	return names
}

// Callables returns the callable members of a module's globals, wrapped.
// Names starting with "_" are private and skipped.
func Callables(globals starlark.StringDict) map[string]core.ParameterIntrospectable {
	out := make(map[string]core.ParameterIntrospectable, len(globals))
	for name, v := range globals {
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		if fn, ok := v.(starlark.Callable); ok {
			out[name] = Wrap(fn)
		}
	}
	return out
}

// Universe returns the Starlark universe builtins that are callable.
func Universe() map[string]core.ParameterIntrospectable {
	return Callables(starlark.Universe)
}
