// Package output renders signature tables and status lines for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // text on a terminal, markdown otherwise
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeCSV      Mode = "csv"
	ModeHTML     Mode = "html"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Modes lists every accepted mode, for flag completion and validation.
var Modes = []Mode{ModeAuto, ModeText, ModeMarkdown, ModeCSV, ModeHTML, ModeJSON, ModeYAML}

// ParseMode validates s as a Mode. The empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	m := Mode(strings.ToLower(s))
	if m == "md" {
		return ModeMarkdown, nil
	}
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want one of %s)", s, joinModes())
}

func joinModes() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}

// Renderer writes tables to w and status lines to errW.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether w is a terminal.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(w, errW, mode, isTerminal(w))
}

// NewRendererWithTTY creates a renderer with explicit terminal detection.
// Colors are disabled when NO_COLOR is set.
func NewRendererWithTTY(w, errW io.Writer, mode Mode, isTTY bool) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styles := PlainStyles()
	if isTTY && !termenv.EnvNoColor() {
		styles = DefaultStyles()
	}
	return &Renderer{w: w, errW: errW, mode: mode, isTTY: isTTY, styles: styles}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether the output is a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Println writes a line to the primary writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted output to the primary writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Success writes a success status line to the status writer.
func (r *Renderer) Success(msg string) {
	r.status(r.styles.Success, "✓ ", msg)
}

// Warning writes a warning status line to the status writer.
func (r *Renderer) Warning(msg string) {
	r.status(r.styles.Warning, "! ", msg)
}

// Error writes an error status line to the status writer.
func (r *Renderer) Error(msg string) {
	r.status(r.styles.Error, "✗ ", msg)
}

// Muted writes a de-emphasized status line to the status writer.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Muted.Render(msg))
}

func (r *Renderer) status(style interface{ Render(...string) string }, icon, msg string) {
	if !r.isTTY {
		icon = ""
	}
	_, _ = fmt.Fprintln(r.errW, style.Render(icon+msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// TableRow is one row in structured output.
type TableRow struct {
	Fun  string   `json:"fun" yaml:"fun"`
	Args []string `json:"args" yaml:"args"`
}

// TableDoc is the structured (json/yaml) form of a table.
type TableDoc struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    []TableRow `json:"rows" yaml:"rows"`
}

// NewTableDoc converts t to its structured form.
func NewTableDoc(t *core.Table) TableDoc {
	doc := TableDoc{Columns: t.Header(), Rows: make([]TableRow, len(t.Rows))}
	for i, row := range t.Rows {
		args := make([]string, len(row))
		copy(args, row)
		doc.Rows[i] = TableRow{Fun: t.RowLabels[i], Args: args}
	}
	return doc
}

// RenderTable writes t in the effective mode.
func (r *Renderer) RenderTable(t *core.Table) error {
	mode := r.EffectiveMode()
	switch mode {
	case ModeJSON:
		return r.JSON(NewTableDoc(t))
	case ModeYAML:
		return r.YAML(NewTableDoc(t))
	}

	return r.writePretty(mode, prettyTable(t.Header(), tableRows(t)))
}

// RenderRows writes an arbitrary header and rows in the effective mode.
// Structured modes emit a list of objects keyed by header.
func (r *Renderer) RenderRows(header []string, rows [][]string) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON || mode == ModeYAML {
		records := make([]map[string]string, len(rows))
		for i, row := range rows {
			rec := make(map[string]string, len(header))
			for j, h := range header {
				if j < len(row) {
					rec[h] = row[j]
				}
			}
			records[i] = rec
		}
		if mode == ModeJSON {
			return r.JSON(records)
		}
		return r.YAML(records)
	}

	body := make([]table.Row, len(rows))
	for i, row := range rows {
		body[i] = toRow(row)
	}
	return r.writePretty(mode, prettyTable(header, body))
}

func (r *Renderer) writePretty(mode Mode, tw table.Writer) error {
	var out string
	switch mode {
	case ModeMarkdown:
		out = tw.RenderMarkdown()
	case ModeCSV:
		out = tw.RenderCSV()
	case ModeHTML:
		out = tw.RenderHTML()
	default:
		out = tw.Render()
	}
	_, err := fmt.Fprintln(r.w, out)
	return err
}

func prettyTable(header []string, rows []table.Row) table.Writer {
	tw := table.NewWriter()
	style := table.StyleLight
	// Labels are identifiers; keep their case
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(toRow(header))
	tw.AppendRows(rows)
	return tw
}

func tableRows(t *core.Table) []table.Row {
	rows := make([]table.Row, len(t.Rows))
	for i := range t.Rows {
		rows[i] = toRow(t.Record(i))
	}
	return rows
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// FormatKeyValue formats a label/value pair for summaries.
func (r *Renderer) FormatKeyValue(key string, value any) string {
	return fmt.Sprintf("  %s %s", r.styles.Muted.Render(key+":"), r.styles.Bold.Render(fmt.Sprint(value)))
}

// Header writes a section header.
func (r *Renderer) Header(title string) {
	_, _ = fmt.Fprintln(r.w, r.styles.Header.Render(title))
}
