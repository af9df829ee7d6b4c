package macro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	starctx "github.com/leapstack-labs/argtable/internal/starlark"
	"github.com/leapstack-labs/argtable/pkg/core"
)

func TestParseStarlarkFile(t *testing.T) {
	src := `
def mapply(FUN, *args, MoreArgs = None, SIMPLIFY = True, **kwargs):
    """Apply FUN elementwise."""
    pass

def keyword_only(a, *, key, flag = -1):
    pass

def _hidden(x):
    pass

def empty():
    pass
`
	ns, err := ParseStarlarkFile("/macros/stats.star", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "stats", ns.Name)
	require.Len(t, ns.Functions, 3, "private functions are skipped")

	mapply := ns.Functions[0]
	assert.Equal(t, "mapply", mapply.Name)
	assert.Equal(t, []string{"FUN", "*args", "MoreArgs=None", "SIMPLIFY=True", "**kwargs"}, mapply.Args)
	assert.Equal(t, []string{"FUN", "MoreArgs", "SIMPLIFY"}, mapply.Params)
	assert.Equal(t, "Apply FUN elementwise.", mapply.Docstring)
	assert.True(t, mapply.HasDocstring())
	assert.Equal(t, 2, mapply.Line)
	assert.Equal(t, "mapply(FUN, *args, MoreArgs=None, SIMPLIFY=True, **kwargs)", mapply.Signature())

	kw := ns.Functions[1]
	assert.Equal(t, []string{"a", "*", "key", "flag=-1"}, kw.Args)
	assert.Equal(t, []string{"a", "key", "flag"}, kw.Params)

	empty := ns.Functions[2]
	assert.NotNil(t, empty.Params)
	assert.Empty(t, empty.Params)
	assert.False(t, empty.HasDocstring())
}

const assignedSource = `
def _impl(x, y = 1):
    """Shared implementation."""
    pass

scale = _impl
twice = lambda v, *rest, times = 2: v
size = len
count = 3

def later(a, b):
    pass

_hidden = lambda q: q
`

func TestParseStarlarkFile_AssignedCallables(t *testing.T) {
	ns, err := ParseStarlarkFile("/macros/calc.star", []byte(assignedSource))
	require.NoError(t, err)

	got := map[string][]string{}
	var names []string
	for _, fn := range ns.Functions {
		names = append(names, fn.Name)
		got[fn.Name] = fn.Params
	}

	assert.Equal(t, []string{"scale", "twice", "size", "later"}, names)
	assert.Equal(t, []string{"x", "y"}, got["scale"])
	assert.Equal(t, []string{"v", "times"}, got["twice"])
	assert.Equal(t, []string{}, got["size"], "universe builtins are opaque")
	assert.Equal(t, []string{"a", "b"}, got["later"])

	assert.Equal(t, "Shared implementation.", ns.Functions[0].Docstring)
	assert.Equal(t, 6, ns.Functions[0].Line)
}

// Static parsing must index the same public callables that execution
// registers, with the same parameters.
func TestParseStarlarkFile_MatchesExecution(t *testing.T) {
	macrosDir := writeMacros(t, map[string]string{"calc.star": assignedSource})

	parsed, err := ParseStarlarkFile("calc.star", []byte(assignedSource))
	require.NoError(t, err)

	modules, err := NewLoader(macrosDir).Load()
	require.NoError(t, err)
	require.Len(t, modules, 1)

	executed := map[string][]string{}
	for name, c := range starctx.Callables(modules[0].Exports) {
		executed["calc."+name] = c.ParameterNames()
	}

	static := map[string][]string{}
	for _, d := range parsed.Descriptors() {
		static[d.Name] = d.Params
	}
	assert.Equal(t, executed, static)
}

func TestParseStarlarkFile_SyntaxError(t *testing.T) {
	_, err := ParseStarlarkFile("/macros/broken.star", []byte("def broken(:\n    pass\n"))
	require.Error(t, err)

	parseErr, ok := err.(*ParseError)
	require.True(t, ok, "expected *ParseError, got %T", err)
	assert.Contains(t, parseErr.Error(), "parse broken.star")
}

func TestParsedNamespace_Descriptors(t *testing.T) {
	ns, err := ParseStarlarkFile("utils.star", []byte("def greet(name):\n    pass\n\ndef now():\n    pass\n"))
	require.NoError(t, err)

	assert.Equal(t, []core.Descriptor{
		{Name: "utils.greet", Params: []string{"name"}},
		{Name: "utils.now", Params: []string{}},
	}, ns.Descriptors())
}

// Static parsing and execution must agree on parameter names.
func TestParseStarlarkFile_MatchesPrelude(t *testing.T) {
	parsed, err := ParseStarlarkFile("base.star", preludeSource)
	require.NoError(t, err)

	reg, err := BuildRegistry(context.Background(), BuildOptions{MacrosDir: "/nonexistent"})
	require.NoError(t, err)

	require.Len(t, parsed.Functions, len(ApplyFamily))
	for i, fn := range parsed.Functions {
		assert.Equal(t, ApplyFamily[i], fn.Name, "prelude declaration order")
		c, ok := reg.Resolve(fn.Name)
		require.True(t, ok)
		assert.Equal(t, c.ParameterNames(), fn.Params, fn.Name)
	}
}

func TestParseDir(t *testing.T) {
	dir := writeMacros(t, map[string]string{
		"utils.star": "def greet(name, *rest):\n    pass\n",
		"agg.star":   "def total(xs, weight=1, **kw):\n    pass\n",
		"notes.txt":  "ignored",
	})

	namespaces, err := ParseDir(dir)
	require.NoError(t, err)

	require.Len(t, namespaces, 3)
	assert.Equal(t, PreludeNamespace, namespaces[0].Name)
	assert.Equal(t, "agg", namespaces[1].Name)
	assert.Equal(t, "utils", namespaces[2].Name)
	assert.Equal(t, []core.Descriptor{{Name: "agg.total", Params: []string{"xs", "weight"}}}, namespaces[1].Descriptors())
}

func TestParseDir_Missing(t *testing.T) {
	namespaces, err := ParseDir("/nonexistent/macros")
	require.NoError(t, err)
	require.Len(t, namespaces, 1)
	assert.Len(t, namespaces[0].Functions, len(ApplyFamily))
}

func TestParseDir_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"reserved", map[string]string{"base.star": "def apply():\n    pass\n"}},
		{"invalid namespace", map[string]string{"my-utils.star": "def f():\n    pass\n"}},
		{"syntax error", map[string]string{"bad.star": "def broken(:\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDir(writeMacros(t, tt.files))
			assert.Error(t, err)
		})
	}
}
