package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/argtable/pkg/core"
)

func scenarioTable() *core.Table {
	return &core.Table{
		RowHeader:    "fun",
		RowLabels:    []string{"f1", "f2", "f3"},
		ColumnLabels: []string{"arg_1", "arg_2"},
		Rows:         core.Grid{{"a", ""}, {"a", "b"}, {"", ""}},
	}
}

func zeroArityTable() *core.Table {
	return &core.Table{
		RowHeader:    "fun",
		RowLabels:    []string{"f3"},
		ColumnLabels: []string{},
		Rows:         core.Grid{{}},
	}
}

func render(t *testing.T, mode Mode, tbl *core.Table) string {
	t.Helper()
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, mode, false)
	require.NoError(t, r.RenderTable(tbl))
	return out.String()
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"text", ModeText, false},
		{"MARKDOWN", ModeMarkdown, false},
		{"md", ModeMarkdown, false},
		{"csv", ModeCSV, false},
		{"html", ModeHTML, false},
		{"json", ModeJSON, false},
		{"yaml", ModeYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ModeText, NewRendererWithTTY(&buf, &buf, ModeAuto, true).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&buf, &buf, ModeAuto, false).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&buf, &buf, ModeJSON, true).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&buf, &buf, "", false).EffectiveMode())
}

func TestRenderTable_CSV(t *testing.T) {
	out := render(t, ModeCSV, scenarioTable())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, []string{
		"fun,arg_1,arg_2",
		"f1,a,",
		"f2,a,b",
		"f3,,",
	}, lines)
}

func TestRenderTable_CSVZeroArity(t *testing.T) {
	out := render(t, ModeCSV, zeroArityTable())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"fun", "f3"}, lines)
}

func TestRenderTable_JSON(t *testing.T) {
	out := render(t, ModeJSON, scenarioTable())

	var doc TableDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"fun", "arg_1", "arg_2"}, doc.Columns)
	assert.Equal(t, []TableRow{
		{Fun: "f1", Args: []string{"a", ""}},
		{Fun: "f2", Args: []string{"a", "b"}},
		{Fun: "f3", Args: []string{"", ""}},
	}, doc.Rows)
}

func TestRenderTable_JSONZeroArity(t *testing.T) {
	out := render(t, ModeJSON, zeroArityTable())
	assert.Contains(t, out, `"args": []`)
	assert.Contains(t, out, `"columns": [
    "fun"
  ]`)
}

func TestRenderTable_YAML(t *testing.T) {
	out := render(t, ModeYAML, scenarioTable())

	var doc TableDoc
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "f3", doc.Rows[2].Fun)
	assert.Equal(t, []string{"", ""}, doc.Rows[2].Args)
}

func TestRenderTable_TextFormats(t *testing.T) {
	for _, mode := range []Mode{ModeText, ModeMarkdown, ModeHTML} {
		t.Run(string(mode), func(t *testing.T) {
			out := render(t, mode, scenarioTable())
			for _, want := range []string{"fun", "arg_1", "arg_2", "f1", "f2", "f3"} {
				assert.Contains(t, out, want)
			}
			assert.NotContains(t, out, "arg_3")
		})
	}
}

func TestRenderTable_TextZeroArity(t *testing.T) {
	out := render(t, ModeText, zeroArityTable())
	assert.Contains(t, out, "fun")
	assert.Contains(t, out, "f3")
	assert.NotContains(t, out, "arg_")
}

func TestRenderRows_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &out, ModeJSON, false)
	require.NoError(t, r.RenderRows([]string{"name", "arity"}, [][]string{{"base.apply", "4"}}))

	var records []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	assert.Equal(t, []map[string]string{{"name": "base.apply", "arity": "4"}}, records)
}

func TestStatusLines_Plain(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, ModeAuto, false)

	r.Success("stored 6 signatures")
	r.Warning("no macros found")
	r.Muted("done")

	assert.Empty(t, out.String())
	assert.Equal(t, "stored 6 signatures\nno macros found\ndone\n", errOut.String())
}

func TestStatusLines_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, ModeAuto, true)
	r.Warning("careful")

	assert.Equal(t, ModeText, r.EffectiveMode())
	assert.Equal(t, "! careful\n", errOut.String())
}
