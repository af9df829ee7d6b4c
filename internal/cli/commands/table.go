package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/argtable/internal/macro"
	"github.com/leapstack-labs/argtable/internal/output"
	"github.com/leapstack-labs/argtable/internal/registry"
	"github.com/leapstack-labs/argtable/internal/sigtable"
	starctx "github.com/leapstack-labs/argtable/internal/starlark"
	"github.com/leapstack-labs/argtable/internal/state"
	"github.com/leapstack-labs/argtable/pkg/core"
)

// TableOptions holds options for the table command.
type TableOptions struct {
	FromState    bool
	Watch        bool
	RowHeader    string
	ColumnPrefix string
}

// NewTableCommand creates the table command.
func NewTableCommand() *cobra.Command {
	opts := &TableOptions{}

	cmd := &cobra.Command{
		Use:   "table [names...]",
		Short: "Tabulate the parameter names of callables",
		Long: `Build a table with one row per callable and one column per parameter.

Rows keep the order the names were given in. Shorter parameter lists are
padded with blank cells up to the widest one. Variadic parameters (*args,
**kwargs) are never listed, and builtins implemented in Go have no columns.

Names come from the arguments, or from the "callables" config key when no
arguments are given. Bare names fall back to the default namespace.

With --from-state the table is built from the last 'argtable discover'
snapshot plus the Starlark builtins. Discovery is static: it indexes def
statements, top-level lambdas, and aliases of functions or builtins. Callables
produced at load time any other way (for example returned by a function call)
only resolve without --from-state.`,
		Example: `  # The apply family from the prelude
  argtable table

  # Specific callables
  argtable table apply lapply len utils.greet

  # From the last discover snapshot, as CSV
  argtable table --from-state -o csv

  # Re-render whenever macro files change
  argtable table --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.FromState, "from-state", false, "Build from the latest stored snapshot instead of loading macros")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render when macro files change")
	cmd.Flags().StringVar(&opts.RowHeader, "row-header", "", "Header of the callable-name column (default from config)")
	cmd.Flags().StringVar(&opts.ColumnPrefix, "column-prefix", "", "Prefix of the numbered parameter columns (default from config)")
	cmd.MarkFlagsMutuallyExclusive("from-state", "watch")

	return cmd
}

func runTable(cmd *cobra.Command, args []string, opts *TableOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	build := sigtable.BuildOptions{
		RowHeader:    cc.Cfg.RowHeader,
		ColumnPrefix: cc.Cfg.ColumnPrefix,
	}
	if opts.RowHeader != "" {
		build.RowHeader = opts.RowHeader
	}
	if opts.ColumnPrefix != "" {
		build.ColumnPrefix = opts.ColumnPrefix
	}

	if opts.FromState {
		return tableFromState(cmd.Context(), cc, args, build)
	}

	names := args
	if len(names) == 0 {
		names = cc.Cfg.Callables
	}

	if opts.Watch {
		if err := ensureWatchDir(cc.Renderer, cc.Cfg.MacrosDir); err != nil {
			return err
		}
	}

	if err := renderTable(cmd.Context(), cc, names, build); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cc.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", cc.Cfg.MacrosDir))
	watcher := macro.NewWatcher(cc.Cfg.MacrosDir, macro.DefaultDebounce, cc.Logger)
	return watcher.Watch(ctx, func() {
		// A broken macro file should not end the watch
		if err := renderTable(ctx, cc, names, build); err != nil {
			cc.Renderer.Error(err.Error())
		}
	})
}

// ensureWatchDir creates a missing macros directory so it can be watched.
func ensureWatchDir(r *output.Renderer, dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("cannot watch %s: not a directory", dir)
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create macros directory: %w", err)
	}
	r.Muted(fmt.Sprintf("Created %s for macro files", dir))
	return nil
}

// renderTable rebuilds the registry and renders one pass.
func renderTable(ctx context.Context, cc *CommandContext, names []string, build sigtable.BuildOptions) error {
	reg, err := cc.BuildRegistry(ctx)
	if err != nil {
		return err
	}
	return tabulate(ctx, cc, reg, names, build)
}

func tableFromState(ctx context.Context, cc *CommandContext, args []string, build sigtable.BuildOptions) error {
	store, cleanup, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := store.LatestSnapshot(ctx)
	if errors.Is(err, state.ErrNoSnapshot) {
		return fmt.Errorf("%w in %s (run 'argtable discover' first)", err, cc.Cfg.StatePath)
	}
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = snap.Names()
	}

	builtins := registry.New("")
	for name, c := range starctx.Universe() {
		if err := builtins.Register(name, c); err != nil {
			return err
		}
	}

	cc.Logger.Debug("building table from snapshot", "snapshot", snap.ID, "callables", len(names))
	resolver := registry.WithDefaultNamespace(registry.Chain(snap, builtins), cc.Cfg.DefaultNamespace)
	return tabulate(ctx, cc, resolver, names, build)
}

func tabulate(ctx context.Context, cc *CommandContext, resolver core.Resolver, names []string, build sigtable.BuildOptions) error {
	collector := sigtable.NewCollector(resolver,
		sigtable.WithConcurrency(cc.Cfg.Concurrency),
		sigtable.WithLogger(cc.Logger),
	)

	tbl, err := sigtable.Tabulate(ctx, collector, names, build)
	if err != nil {
		return err
	}
	return cc.Renderer.RenderTable(tbl)
}
