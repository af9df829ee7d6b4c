package sigtable

import (
	"context"
	"strconv"

	"github.com/leapstack-labs/argtable/pkg/core"
)

// Normalize pads every parameter list to the widest arity in sig.
// Rows follow sig's insertion order; padding cells are "".
func Normalize(sig *core.SignatureTable) core.Grid {
	if sig == nil {
		return core.Grid{}
	}

	w := sig.MaxArity()
	descriptors := sig.Descriptors()
	grid := make(core.Grid, len(descriptors))
	for i, d := range descriptors {
		row := make([]string, w)
		copy(row, d.Params)
		grid[i] = row
	}
	return grid
}

// BuildOptions controls table labels.
type BuildOptions struct {
	// RowHeader labels the callable-name column. Defaults to "fun".
	RowHeader string
	// ColumnPrefix prefixes 1-based column numbers. Defaults to "arg_".
	ColumnPrefix string
}

// Build normalizes sig and attaches row and column labels.
func Build(sig *core.SignatureTable, opts BuildOptions) *core.Table {
	if opts.RowHeader == "" {
		opts.RowHeader = core.DefaultRowHeader
	}
	if opts.ColumnPrefix == "" {
		opts.ColumnPrefix = core.DefaultColumnPrefix
	}

	grid := Normalize(sig)

	var rowLabels []string
	if sig != nil {
		rowLabels = sig.Names()
	} else {
		rowLabels = []string{}
	}

	w := 0
	if sig != nil {
		w = sig.MaxArity()
	}
	columns := make([]string, w)
	for j := range columns {
		columns[j] = opts.ColumnPrefix + strconv.Itoa(j+1)
	}

	return &core.Table{
		RowHeader:    opts.RowHeader,
		RowLabels:    rowLabels,
		ColumnLabels: columns,
		Rows:         grid,
	}
}

// Tabulate collects names through c and builds the labelled table.
func Tabulate(ctx context.Context, c *Collector, names []string, opts BuildOptions) (*core.Table, error) {
	sig, err := c.Collect(ctx, names)
	if err != nil {
		return nil, err
	}
	return Build(sig, opts), nil
}
