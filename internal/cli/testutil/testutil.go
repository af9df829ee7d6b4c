// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/argtable/internal/output"
)

// SetupTestProject creates a temporary project with an argtable.yaml and a
// macros directory holding the given files. It returns the project root.
func SetupTestProject(t *testing.T, macros map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	macrosDir := filepath.Join(tmpDir, "macros")
	if err := os.MkdirAll(macrosDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", macrosDir, err)
	}

	for name, content := range macros {
		if err := os.WriteFile(filepath.Join(macrosDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	cfg := "macros_dir: macros\nstate_path: .argtable/state.db\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "argtable.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to create argtable.yaml: %v", err)
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, mode, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
