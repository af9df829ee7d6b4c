package macro

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/argtable/internal/registry"
	starctx "github.com/leapstack-labs/argtable/internal/starlark"
)

// ReservedNamespaces cannot be used as macro file names.
var ReservedNamespaces = []string{starctx.BuiltinsNamespace, PreludeNamespace}

func isReserved(namespace string) bool {
	for _, r := range ReservedNamespaces {
		if r == namespace {
			return true
		}
	}
	return false
}

// Register adds the callable exports of a user macro module to reg.
func Register(reg *registry.CallableRegistry, module *LoadedModule) error {
	if isReserved(module.Namespace) {
		return &registry.RegistryError{
			Namespace: module.Namespace,
			Message:   fmt.Sprintf("namespace is reserved (defined in %s)", module.Path),
		}
	}
	return reg.RegisterNamespace(module.Namespace, starctx.Callables(module.Exports))
}

// RegisterAll registers modules in order and stops at the first error.
func RegisterAll(reg *registry.CallableRegistry, modules []*LoadedModule) error {
	for _, m := range modules {
		if err := Register(reg, m); err != nil {
			return err
		}
	}
	return nil
}

// BuildOptions configures BuildRegistry.
type BuildOptions struct {
	// MacrosDir holds user .star files; a missing directory is not an error.
	MacrosDir string

	// DefaultNamespace is used for bare names. Empty means PreludeNamespace.
	DefaultNamespace string

	// Concurrency bounds the thread pool used to execute macro files.
	Concurrency int

	Logger *slog.Logger
}

// BuildRegistry assembles the full callable registry:
// universe builtins (bare names), the prelude, then user macros.
func BuildRegistry(ctx context.Context, opts BuildOptions) (*registry.CallableRegistry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	defaultNS := opts.DefaultNamespace
	if defaultNS == "" {
		defaultNS = PreludeNamespace
	}

	reg := registry.New(defaultNS)

	for name, c := range starctx.Universe() {
		if err := reg.Register(name, c); err != nil {
			return nil, err
		}
	}

	prelude, err := LoadPrelude()
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterNamespace(prelude.Namespace, starctx.Callables(prelude.Exports)); err != nil {
		return nil, err
	}

	loader := NewLoader(opts.MacrosDir,
		WithLogger(logger),
		WithThreadPool(starctx.NewThreadPool(opts.Concurrency)),
	)
	modules, err := loader.LoadContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := RegisterAll(reg, modules); err != nil {
		return nil, err
	}

	logger.Debug("callable registry built",
		"callables", reg.Len(),
		"namespaces", len(reg.Namespaces()),
		"default_namespace", defaultNS,
	)

	return reg, nil
}
