package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/argtable/internal/macro"
	"github.com/leapstack-labs/argtable/internal/output"
	"github.com/leapstack-labs/argtable/pkg/core"
)

// DiscoverResult is the structured form of a discover run.
type DiscoverResult struct {
	SnapshotID string                   `json:"snapshot_id" yaml:"snapshot_id"`
	StatePath  string                   `json:"state_path" yaml:"state_path"`
	Namespaces []*macro.ParsedNamespace `json:"namespaces" yaml:"namespaces"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Index macro signatures into the state database",
		Long: `Statically parse the prelude and every macro file and store the
signatures as a new snapshot in the SQLite state database.

No macro code is executed. Use 'argtable table --from-state' to build a
table from the latest snapshot.

Output adapts to environment:
  - Terminal: Styled summary with success indicator
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Discover all macros
  argtable discover

  # Discover with custom macros directory
  argtable discover --macros-dir ./custom-macros

  # Output as JSON
  argtable discover --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd)
		},
	}

	return cmd
}

func runDiscover(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	namespaces, err := macro.ParseDir(cc.Cfg.MacrosDir)
	if err != nil {
		return fmt.Errorf("failed to discover macros: %w", err)
	}

	var descriptors []core.Descriptor
	for _, ns := range namespaces {
		descriptors = append(descriptors, ns.Descriptors()...)
	}

	store, cleanup, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := store.SaveSnapshot(cmd.Context(), cc.Cfg.MacrosDir, descriptors)
	if err != nil {
		return err
	}
	cc.Logger.Debug("snapshot saved", "snapshot", snap.ID, "signatures", len(descriptors))

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(DiscoverResult{SnapshotID: snap.ID, StatePath: cc.Cfg.StatePath, Namespaces: namespaces})
	case output.ModeYAML:
		return r.YAML(DiscoverResult{SnapshotID: snap.ID, StatePath: cc.Cfg.StatePath, Namespaces: namespaces})
	case output.ModeMarkdown:
		discoverMarkdown(r, namespaces, len(descriptors), snap.ID, cc.Cfg.StatePath)
	default:
		discoverText(r, namespaces, len(descriptors), snap.ID, cc.Cfg.StatePath)
	}
	return nil
}

// discoverText outputs discovery results in styled text format.
func discoverText(r *output.Renderer, namespaces []*macro.ParsedNamespace, funcCount int, snapshotID, statePath string) {
	r.Success(fmt.Sprintf("Discovered %d namespaces with %d functions", len(namespaces), funcCount))
	r.Muted(fmt.Sprintf("Snapshot %s saved to %s", snapshotID, statePath))

	if r.IsTTY() {
		r.Println("")
		r.Header("Namespaces")
		for _, ns := range namespaces {
			r.Printf("  - %s (%d functions)\n", ns.Name, len(ns.Functions))
		}
	}
}

// discoverMarkdown outputs discovery results in markdown format.
func discoverMarkdown(r *output.Renderer, namespaces []*macro.ParsedNamespace, funcCount int, snapshotID, statePath string) {
	r.Println("# Discovery Results")
	r.Println("")
	r.Printf("- **Namespaces:** %d\n", len(namespaces))
	r.Printf("- **Functions:** %d\n", funcCount)
	r.Printf("- **Snapshot:** %s\n", snapshotID)
	r.Printf("- **State Path:** %s\n", statePath)
	r.Println("")
	r.Println("## Functions")
	r.Println("")
	for _, ns := range namespaces {
		for _, fn := range ns.Functions {
			if fn.HasDocstring() {
				summary, _, _ := strings.Cut(fn.Docstring, "\n")
				r.Printf("- `%s.%s`: %s\n", ns.Name, fn.Signature(), summary)
				continue
			}
			r.Printf("- `%s.%s`\n", ns.Name, fn.Signature())
		}
	}
}
