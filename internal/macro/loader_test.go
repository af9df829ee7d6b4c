package macro

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/argtable/internal/testutil"
)

// writeMacros creates a macros directory containing files.
func writeMacros(t *testing.T, files map[string]string) string {
	t.Helper()
	macrosDir := filepath.Join(t.TempDir(), "macros")
	require.NoError(t, os.Mkdir(macrosDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(macrosDir, name), []byte(content), 0o644))
	}
	return macrosDir
}

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name           string
		setupDir       func(t *testing.T) string
		wantModules    int
		wantNil        bool // expect nil modules (not empty slice)
		wantErr        bool
		wantNamespaces []string // in load order
		checkExports   map[string][]string
	}{
		{
			name: "empty directory",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, nil)
			},
			wantModules: 0,
		},
		{
			name: "non-existent directory",
			setupDir: func(_ *testing.T) string {
				return "/nonexistent/path/to/macros"
			},
			wantNil: true,
		},
		{
			name: "not a directory",
			setupDir: func(t *testing.T) string {
				filePath := filepath.Join(t.TempDir(), "macros")
				require.NoError(t, os.WriteFile(filePath, []byte("not a dir"), 0o644))
				return filePath
			},
			wantErr: true,
		},
		{
			name: "single macro with multiple functions",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{
					"utils.star": `
def greet(name):
    return "Hello, " + name + "!"

def add(a, b):
    return a + b

_private = "should not be exported"
`,
				})
			},
			wantModules:    1,
			wantNamespaces: []string{"utils"},
			checkExports: map[string][]string{
				"utils": {"greet", "add"},
			},
		},
		{
			name: "multiple macro files load in filename order",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{
					"zeta.star":     "def last():\n    pass\n",
					"datetime.star": "def now():\n    return \"2024-01-01\"\n",
					"math.star":     "def square(x):\n    return x * x\n",
				})
			},
			wantModules:    3,
			wantNamespaces: []string{"datetime", "math", "zeta"},
		},
		{
			name: "syntax error in macro",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{
					"broken.star": "def broken(:\n    return 1\n",
				})
			},
			wantErr: true,
		},
		{
			name: "invalid namespace (starts with number)",
			setupDir: func(t *testing.T) string {
				return writeMacros(t, map[string]string{"123invalid.star": "x = 1"})
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(tt.setupDir(t), WithLogger(testutil.NewTestLogger(t)))
			modules, err := loader.Load()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, modules)
				return
			}

			require.Len(t, modules, tt.wantModules)

			if len(tt.wantNamespaces) > 0 {
				got := make([]string, len(modules))
				for i, m := range modules {
					got[i] = m.Namespace
				}
				assert.Equal(t, tt.wantNamespaces, got)
			}

			for ns, expectedExports := range tt.checkExports {
				var module *LoadedModule
				for _, m := range modules {
					if m.Namespace == ns {
						module = m
					}
				}
				require.NotNil(t, module, "namespace %q not found", ns)
				for _, export := range expectedExports {
					assert.Contains(t, module.Exports, export, "expected export %q in namespace %q", export, ns)
				}
				assert.NotContains(t, module.Exports, "_private", "'_private' should not be exported")
			}
		})
	}
}

func TestLoader_Load_SyntaxError_Details(t *testing.T) {
	macrosDir := writeMacros(t, map[string]string{
		"broken.star": "def broken(:\n    return 1\n",
	})

	_, err := NewLoader(macrosDir).Load()
	require.Error(t, err, "expected error for syntax error in macro")

	loadErr, ok := err.(*LoadError)
	require.True(t, ok, "expected *LoadError, got %T", err)
	assert.Equal(t, filepath.Join(macrosDir, "broken.star"), loadErr.File)
	assert.Contains(t, loadErr.Error(), "macros/broken.star")
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", "datetime", false},
		{"valid with underscore", "date_time", false},
		{"valid start with underscore", "_private", false},
		{"valid with numbers", "utils2", false},
		{"empty", "", true},
		{"starts with number", "123abc", true},
		{"contains hyphen", "date-time", true},
		{"contains dot", "date.time", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNamespace(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "validateNamespace(%q) error = %v", tt.input, err)
		})
	}
}

func TestLoader_ExportsAreCallable(t *testing.T) {
	macrosDir := writeMacros(t, map[string]string{
		"math.star": "def double(x):\n    return x * 2\n",
	})

	modules, err := NewLoader(macrosDir).Load()
	require.NoError(t, err)
	require.Len(t, modules, 1)

	doubleFn := modules[0].Exports["double"]
	require.NotNil(t, doubleFn, "expected 'double' function")

	thread := &starlark.Thread{Name: "test"}
	result, err := starlark.Call(thread, doubleFn, starlark.Tuple{starlark.MakeInt(5)}, nil)
	require.NoError(t, err)

	val, ok := result.(starlark.Int).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(10), val)
}

func TestLoader_LoadContext_Cancelled(t *testing.T) {
	macrosDir := writeMacros(t, map[string]string{
		"utils.star": "def greet(name):\n    return name\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(macrosDir).LoadContext(ctx)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, context.Canceled.Error())
}
