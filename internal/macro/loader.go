// Package macro loads Starlark macro files whose function signatures feed the
// callable registry. Macros are loaded from .star files and auto-namespaced
// based on filename.
package macro

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"

	starctx "github.com/leapstack-labs/argtable/internal/starlark"
)

// Loader scans a directory for .star files and loads them as Starlark modules.
type Loader struct {
	dir    string
	pool   *starctx.ThreadPool
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report loaded files.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithThreadPool sets the pool used to execute macro files.
func WithThreadPool(pool *starctx.ThreadPool) LoaderOption {
	return func(l *Loader) {
		l.pool = pool
	}
}

// NewLoader creates a new macro loader for the specified directory.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:    dir,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.pool == nil {
		l.pool = starctx.NewThreadPool(0)
	}
	return l
}

// LoadedModule represents an executed Starlark macro file.
type LoadedModule struct {
	// Namespace is derived from filename (e.g., "datetime" from "datetime.star")
	Namespace string

	// Path is the absolute path to the .star file
	Path string

	// Exports contains all exported functions/values (names not starting with _)
	Exports starlark.StringDict
}

// Load scans the macro directory and loads all .star files.
// Modules are returned in filename order.
func (l *Loader) Load() ([]*LoadedModule, error) {
	return l.LoadContext(context.Background())
}

// LoadContext is Load with cancellation: cancelling ctx interrupts macro
// files still executing.
func (l *Loader) LoadContext(ctx context.Context) ([]*LoadedModule, error) {
	// Check if directory exists
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			// No macros directory is fine - return empty slice
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access macros directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("macros path is not a directory: %s", l.dir)
	}

	// Find all .star files (Glob returns them sorted)
	pattern := filepath.Join(l.dir, "*.star")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}

	tasks := make([]starctx.ExecTask, 0, len(files))
	for _, file := range files {
		namespace := strings.TrimSuffix(filepath.Base(file), ".star")
		if err := validateNamespace(namespace); err != nil {
			return nil, &LoadError{File: file, Message: err.Error()}
		}

		content, err := os.ReadFile(file) //nolint:gosec // G304: path comes from filepath.Glob within macros directory
		if err != nil {
			return nil, &LoadError{
				File:    file,
				Message: fmt.Sprintf("failed to read file: %v", err),
			}
		}

		tasks = append(tasks, starctx.ExecTask{
			Name:   fmt.Sprintf("load:%s", namespace),
			Path:   file,
			Source: content,
		})
	}

	results := l.pool.ExecFiles(ctx, tasks, nil)

	var modules []*LoadedModule
	for i, res := range results {
		path := tasks[i].Path
		if res.Error != nil {
			return nil, &LoadError{
				File:    path,
				Message: fmt.Sprintf("Starlark execution error: %v", res.Error),
			}
		}

		namespace := strings.TrimSuffix(filepath.Base(path), ".star")
		modules = append(modules, &LoadedModule{
			Namespace: namespace,
			Path:      path,
			Exports:   filterExports(res.Globals),
		})
		l.logger.Debug("loaded macro file", "namespace", namespace, "path", path, "exports", len(modules[len(modules)-1].Exports))
	}

	return modules, nil
}

// filterExports drops names starting with _.
func filterExports(globals starlark.StringDict) starlark.StringDict {
	exports := make(starlark.StringDict)
	for name, value := range globals {
		if !strings.HasPrefix(name, "_") {
			exports[name] = value
		}
	}
	return exports
}

// validateNamespace checks if a namespace name is valid.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}

	// Check for valid identifier
	for i, r := range name {
		if i == 0 {
			if !isLetter(r) && r != '_' {
				return fmt.Errorf("namespace must start with letter or underscore: %s", name)
			}
		} else {
			if !isLetter(r) && !isDigit(r) && r != '_' {
				return fmt.Errorf("namespace contains invalid character: %s", name)
			}
		}
	}

	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// LoadError represents an error loading a macro file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}
