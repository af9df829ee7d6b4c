package macro

import (
	_ "embed"
	"fmt"

	"go.starlark.net/starlark"
)

// PreludeNamespace is the namespace of the embedded signature declarations.
// It is also the default namespace for bare callable names.
const PreludeNamespace = "base"

//go:embed prelude/base.star
var preludeSource []byte

// ApplyFamily lists the prelude callables in their conventional order.
var ApplyFamily = []string{"apply", "lapply", "sapply", "vapply", "mapply", "tapply"}

// LoadPrelude executes the embedded prelude and returns it as a module.
func LoadPrelude() (*LoadedModule, error) {
	thread := &starlark.Thread{
		Name:  "load:" + PreludeNamespace,
		Print: func(_ *starlark.Thread, _ string) {},
	}

	path := "prelude/" + PreludeNamespace + ".star"
	globals, err := starlark.ExecFile(thread, path, preludeSource, nil) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("Starlark execution error: %v", err),
		}
	}

	return &LoadedModule{
		Namespace: PreludeNamespace,
		Path:      path,
		Exports:   filterExports(globals),
	}, nil
}
