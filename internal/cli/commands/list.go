package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/argtable/internal/registry"
	starctx "github.com/leapstack-labs/argtable/internal/starlark"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Namespace string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered callables with their arity",
		Long: `List every callable the table command can resolve.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Everything: builtins, prelude and macros
  argtable list

  # Only one namespace
  argtable list --namespace base -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "Only list callables in this namespace (\"builtins\" for unqualified)")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	reg, err := cc.BuildRegistry(cmd.Context())
	if err != nil {
		return err
	}

	rows := listRows(reg, opts.Namespace)
	if len(rows) == 0 {
		cc.Renderer.Warning("No callables found")
		return nil
	}

	return cc.Renderer.RenderRows([]string{"name", "kind", "arity", "params"}, rows)
}

func listRows(reg *registry.CallableRegistry, namespace string) [][]string {
	var rows [][]string
	for _, name := range reg.Names() {
		if !inNamespace(name, namespace) {
			continue
		}
		c, ok := reg.Resolve(name)
		if !ok {
			continue
		}

		kind := "function"
		if sc, ok := c.(*starctx.Callable); ok && sc.Opaque() {
			kind = "builtin"
		}

		params := c.ParameterNames()
		rows = append(rows, []string{name, kind, strconv.Itoa(len(params)), strings.Join(params, ", ")})
	}
	return rows
}

func inNamespace(name, namespace string) bool {
	switch namespace {
	case "":
		return true
	case starctx.BuiltinsNamespace:
		return !strings.Contains(name, ".")
	default:
		return strings.HasPrefix(name, namespace+".")
	}
}
