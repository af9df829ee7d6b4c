// Package macro provides functionality for loading and managing Starlark macros.
// This file contains static parsing functions that extract metadata without execution.

package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// ParsedFunction represents a function extracted from a .star file.
type ParsedFunction struct {
	Name      string   `json:"name"`      // Function name
	Args      []string `json:"args"`      // Argument display strings (with defaults like "x=None", "*args")
	Params    []string `json:"params"`    // Bindable parameter names, including defaulted ones; no *args/**kwargs
	Docstring string   `json:"docstring"` // Docstring if present
	Line      int      `json:"line"`      // Line number for go-to-definition
}

// ParsedNamespace represents a parsed .star file.
type ParsedNamespace struct {
	Name      string            `json:"name"`      // Namespace name (filename without .star)
	FilePath  string            `json:"file_path"` // Absolute path to .star file
	Functions []*ParsedFunction `json:"functions"`
}

// ParseStarlarkFile statically parses a .star file and extracts function metadata.
// This does NOT execute the file - it only analyzes the AST. Besides def
// statements it picks up top-level lambdas and aliases of known functions.
func ParseStarlarkFile(filename string, content []byte) (*ParsedNamespace, error) {
	f, err := syntax.Parse(filename, content, 0) //nolint:staticcheck // SA1019: will migrate to FileOptions.Parse later
	if err != nil {
		return nil, &ParseError{
			File:    filename,
			Message: err.Error(),
		}
	}

	ns := &ParsedNamespace{
		Name:     strings.TrimSuffix(filepath.Base(filename), ".star"),
		FilePath: filename,
	}

	var order []string
	seen := make(map[string]bool)
	byName := make(map[string]*ParsedFunction)
	set := func(fn *ParsedFunction) {
		if !seen[fn.Name] {
			seen[fn.Name] = true
			order = append(order, fn.Name)
		}
		byName[fn.Name] = fn
	}

	// Top-level bindings are replayed in order so the last one wins, as it
	// does when the file is executed.
	for _, stmt := range f.Stmts {
		switch st := stmt.(type) {
		case *syntax.DefStmt:
			set(&ParsedFunction{
				Name:      st.Name.Name,
				Line:      int(st.Name.NamePos.Line),
				Args:      extractArgs(st.Params),
				Params:    extractParams(st.Params),
				Docstring: extractDocstring(st.Body),
			})

		case *syntax.AssignStmt:
			lhs, ok := st.LHS.(*syntax.Ident)
			if !ok || st.Op != syntax.EQ {
				continue
			}
			if fn := assignedFunction(lhs, st.RHS, byName); fn != nil {
				set(fn)
			} else {
				delete(byName, lhs.Name)
			}
		}
	}

	for _, name := range order {
		fn, ok := byName[name]
		// Skip private functions (start with _)
		if !ok || strings.HasPrefix(name, "_") {
			continue
		}
		ns.Functions = append(ns.Functions, fn)
	}

	return ns, nil
}

// assignedFunction resolves `name = lambda ...` and `name = other` where
// other is a function bound earlier in the file or a universe builtin.
// Any other right-hand side yields nil.
func assignedFunction(lhs *syntax.Ident, rhs syntax.Expr, bound map[string]*ParsedFunction) *ParsedFunction {
	line := int(lhs.NamePos.Line)

	switch e := rhs.(type) {
	case *syntax.LambdaExpr:
		return &ParsedFunction{
			Name:   lhs.Name,
			Line:   line,
			Args:   extractArgs(e.Params),
			Params: extractParams(e.Params),
		}
	case *syntax.Ident:
		if target, ok := bound[e.Name]; ok {
			alias := *target
			alias.Name = lhs.Name
			alias.Line = line
			return &alias
		}
		if _, ok := starlark.Universe[e.Name].(starlark.Callable); ok {
			return &ParsedFunction{Name: lhs.Name, Line: line, Params: []string{}}
		}
	}
	return nil
}

// Descriptors converts parsed functions to qualified descriptors.
func (ns *ParsedNamespace) Descriptors() []core.Descriptor {
	out := make([]core.Descriptor, 0, len(ns.Functions))
	for _, fn := range ns.Functions {
		out = append(out, core.Descriptor{
			Name:   ns.Name + "." + fn.Name,
			Params: fn.Params,
		})
	}
	return out
}

// extractArgs converts syntax parameters to string representations.
func extractArgs(params []syntax.Expr) []string {
	var args []string
	for _, param := range params {
		switch p := param.(type) {
		case *syntax.Ident:
			// Simple parameter: def foo(x)
			args = append(args, p.Name)
		case *syntax.BinaryExpr:
			// Default parameter: def foo(x=1)
			if p.Op == syntax.EQ {
				if ident, ok := p.X.(*syntax.Ident); ok {
					args = append(args, ident.Name+"="+exprToString(p.Y))
				}
			}
		case *syntax.UnaryExpr:
			// *args, **kwargs or a bare *
			prefix := "*"
			if p.Op == syntax.STARSTAR {
				prefix = "**"
			}
			if ident, ok := p.X.(*syntax.Ident); ok {
				args = append(args, prefix+ident.Name)
			} else {
				args = append(args, prefix)
			}
		}
	}
	return args
}

// extractParams returns the names of bindable parameters in declaration order.
func extractParams(params []syntax.Expr) []string {
	names := []string{}
	for _, param := range params {
		switch p := param.(type) {
		case *syntax.Ident:
			names = append(names, p.Name)
		case *syntax.BinaryExpr:
			if ident, ok := p.X.(*syntax.Ident); ok && p.Op == syntax.EQ {
				names = append(names, ident.Name)
			}
		}
	}
	return names
}

// extractDocstring gets the docstring from function body if present.
func extractDocstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}

	// Check if first statement is an expression statement with a string literal
	exprStmt, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}

	lit, ok := exprStmt.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}

	// Return the string value (unquoted)
	s, ok := lit.Value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// exprToString converts a syntax expression to a string representation.
func exprToString(expr syntax.Expr) string {
	switch e := expr.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.ListExpr:
		return "[]"
	case *syntax.DictExpr:
		return "{}"
	case *syntax.TupleExpr:
		return "()"
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			return "-" + exprToString(e.X)
		}
		return exprToString(e.X)
	default:
		return "..."
	}
}

// ParseError represents an error during static parsing.
type ParseError struct {
	File    string
	Message string
}

func (e *ParseError) Error() string {
	return "parse " + filepath.Base(e.File) + ": " + e.Message
}

// Signature returns a human-readable signature for a function.
func (f *ParsedFunction) Signature() string {
	return f.Name + "(" + strings.Join(f.Args, ", ") + ")"
}

// HasDocstring returns true if the function has a docstring.
func (f *ParsedFunction) HasDocstring() bool {
	return f.Docstring != ""
}

// ParseDir statically parses the prelude followed by every .star file in
// dir, in filename order. A missing dir yields only the prelude.
func ParseDir(dir string) ([]*ParsedNamespace, error) {
	prelude, err := ParseStarlarkFile("prelude/"+PreludeNamespace+".star", preludeSource)
	if err != nil {
		return nil, err
	}
	namespaces := []*ParsedNamespace{prelude}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return namespaces, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan macros directory: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".star")
		if err := validateNamespace(name); err != nil {
			return nil, &LoadError{File: file, Message: err.Error()}
		}
		if isReserved(name) {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("namespace %q is reserved", name)}
		}

		content, err := os.ReadFile(file) //nolint:gosec // G304: path comes from filepath.Glob within macros directory
		if err != nil {
			return nil, &LoadError{File: file, Message: fmt.Sprintf("failed to read file: %v", err)}
		}

		ns, err := ParseStarlarkFile(file, content)
		if err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}

	return namespaces, nil
}
