package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rooftakeoff",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rooftakeoff v%s\n", version.Version)
			fmt.Fprintf(out, "Built %s from %s\n", version.BuildTime, version.GitCommit)
		},
	}
}
