// Package registry provides callable registration and name resolution.
// It maps the names a user asks for to introspectable callables, with
// macro functions stored under qualified "namespace.name" keys.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// CallableRegistry maps callable names to introspectable callables.
type CallableRegistry struct {
	mu sync.RWMutex

	// byName maps full names to callables: "base.apply" -> callable, "len" -> callable
	byName map[string]core.ParameterIntrospectable

	// namespaces tracks every namespace registered via RegisterNamespace
	namespaces map[string]struct{}

	// defaultNamespace is tried for bare names that do not match exactly
	defaultNamespace string
}

var _ core.Resolver = (*CallableRegistry)(nil)

// New creates an empty registry. Bare names that do not resolve exactly are
// looked up in defaultNamespace; an empty defaultNamespace disables fallback.
func New(defaultNamespace string) *CallableRegistry {
	return &CallableRegistry{
		byName:           make(map[string]core.ParameterIntrospectable),
		namespaces:       make(map[string]struct{}),
		defaultNamespace: defaultNamespace,
	}
}

// Register adds a single callable under name.
func (r *CallableRegistry) Register(name string, c core.ParameterIntrospectable) error {
	if name == "" {
		return &RegistryError{Name: name, Message: "callable name cannot be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return &RegistryError{Name: name, Message: "callable already registered"}
	}
	r.byName[name] = c
	return nil
}

// RegisterNamespace adds every callable under "namespace.name".
// Nothing is registered if the namespace already exists.
func (r *CallableRegistry) RegisterNamespace(namespace string, callables map[string]core.ParameterIntrospectable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.namespaces[namespace]; exists {
		return &RegistryError{Namespace: namespace, Message: "namespace already registered"}
	}

	for name := range callables {
		if _, exists := r.byName[Qualify(namespace, name)]; exists {
			return &RegistryError{Namespace: namespace, Name: name, Message: "callable already registered"}
		}
	}

	r.namespaces[namespace] = struct{}{}
	for name, c := range callables {
		r.byName[Qualify(namespace, name)] = c
	}
	return nil
}

// Resolve looks up a callable.
//  1. Exact match on the full name
//  2. Bare names fall back to the default namespace
func (r *CallableRegistry) Resolve(name string) (core.ParameterIntrospectable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byName[name]; ok {
		return c, true
	}

	if r.defaultNamespace != "" && !strings.Contains(name, ".") {
		if c, ok := r.byName[Qualify(r.defaultNamespace, name)]; ok {
			return c, true
		}
	}

	return nil, false
}

// Has returns true if name resolves.
func (r *CallableRegistry) Has(name string) bool {
	_, ok := r.Resolve(name)
	return ok
}

// Names returns all registered full names, sorted.
func (r *CallableRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Namespaces returns the registered namespaces, sorted.
func (r *CallableRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	namespaces := make([]string, 0, len(r.namespaces))
	for ns := range r.namespaces {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}

// DefaultNamespace returns the namespace used for bare-name fallback.
func (r *CallableRegistry) DefaultNamespace() string {
	return r.defaultNamespace
}

// Len returns the number of registered callables.
func (r *CallableRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// WithDefaultNamespace wraps any resolver with the same bare-name fallback
// the registry applies.
func WithDefaultNamespace(inner core.Resolver, namespace string) core.Resolver {
	return fallbackResolver{inner: inner, namespace: namespace}
}

type fallbackResolver struct {
	inner     core.Resolver
	namespace string
}

func (f fallbackResolver) Resolve(name string) (core.ParameterIntrospectable, bool) {
	if c, ok := f.inner.Resolve(name); ok {
		return c, true
	}
	if f.namespace == "" || strings.Contains(name, ".") {
		return nil, false
	}
	return f.inner.Resolve(Qualify(f.namespace, name))
}

// Chain resolves a name against each resolver in turn; the first match wins.
func Chain(resolvers ...core.Resolver) core.Resolver {
	return chainResolver(resolvers)
}

type chainResolver []core.Resolver

func (c chainResolver) Resolve(name string) (core.ParameterIntrospectable, bool) {
	for _, r := range c {
		if callable, ok := r.Resolve(name); ok {
			return callable, true
		}
	}
	return nil, false
}

// Qualify joins a namespace and a name.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// RegistryError represents an error registering a callable or namespace.
type RegistryError struct {
	Namespace string
	Name      string
	Message   string
}

func (e *RegistryError) Error() string {
	switch {
	case e.Namespace != "" && e.Name != "":
		return fmt.Sprintf("%s.%s: %s", e.Namespace, e.Name, e.Message)
	case e.Namespace != "":
		return fmt.Sprintf("namespace %s: %s", e.Namespace, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
}
