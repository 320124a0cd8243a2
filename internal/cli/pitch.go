package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/model"
)

func newPitchCmd() *cobra.Command {
	var nearest float64

	cmd := &cobra.Command{
		Use:   "pitch",
		Short: "Print the pitch multiplier table",
		Long: `Print the 13-entry pitch table used to convert plan area into
sloped roof area.

Examples:
  # Full table
  rooftakeoff pitch

  # Closest table pitch for a measured multiplier
  rooftakeoff pitch --nearest 1.09`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("nearest") {
				label, err := model.NearestPitch(nearest)
				if err != nil {
					return err
				}
				m, err := model.MultiplierFor(label)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (multiplier %.4f)\n", label, m)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PITCH\tRISE\tMULTIPLIER")
			for _, e := range model.PitchTable() {
				fmt.Fprintf(w, "%s\t%d\t%.4f\n", e.Label, e.Rise, e.Multiplier)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Float64Var(&nearest, "nearest", 0, "Find the table pitch closest to this multiplier")
	return cmd
}
