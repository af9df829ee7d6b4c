package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/argtable/internal/output"
)

// BuildInfo is the version metadata stamped in at build time.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display argtable version and build information.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeText)
			r.Printf("argtable v%s\n", info.Version)
			r.Println("Signature tables for Starlark callables")
			r.Println("")
			r.Println(r.FormatKeyValue("Commit", info.GitCommit))
			r.Println(r.FormatKeyValue("Built", info.BuildDate))
			r.Println(r.FormatKeyValue("Go", runtime.Version()))
			return nil
		},
	}
}
