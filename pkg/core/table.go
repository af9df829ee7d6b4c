package core

// Default labels for a rendered signature table.
const (
	DefaultRowHeader    = "fun"
	DefaultColumnPrefix = "arg_"
)

// Grid is a rectangular table of parameter names. Every row has the same
// number of cells; padding cells hold the empty string.
type Grid [][]string

// Width returns the number of columns, or 0 for an empty grid.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Table is a Grid together with the labels a renderer needs.
type Table struct {
	// RowHeader labels the row-label column ("fun").
	RowHeader string
	// RowLabels holds the callable names, one per row.
	RowLabels []string
	// ColumnLabels holds one label per grid column ("arg_1".."arg_W").
	ColumnLabels []string
	Rows         Grid
}

// Header returns the full header row: RowHeader followed by ColumnLabels.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.ColumnLabels)+1)
	header = append(header, t.RowHeader)
	return append(header, t.ColumnLabels...)
}

// Record returns row i prefixed with its label.
func (t *Table) Record(i int) []string {
	rec := make([]string, 0, len(t.Rows[i])+1)
	rec = append(rec, t.RowLabels[i])
	return append(rec, t.Rows[i]...)
}
