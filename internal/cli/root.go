// Package cli is the rooftakeoff command-line adapter.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/engine"
	"github.com/piwi3910/rooftakeoff/internal/model"
	"github.com/piwi3910/rooftakeoff/internal/project"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

func (o *globalOptions) appConfig() (model.AppConfig, error) {
	return project.LoadAppConfig(o.configPath)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "rooftakeoff",
		Short: "Roof measurement and material takeoff",
		Long: `rooftakeoff - roof geometry and takeoff engine

Measures building outlines drawn on aerial imagery or CAD, splits them
into roof facets, recognises common roof shapes and converts plan area
and roof line lengths into squares and material counts.

Outlines can be read from WKT, GeoJSON or DXF files; measured roof
lines from CSV or XLSX sheets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				engine.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&opts.configPath, "config", project.DefaultConfigPath(), "Path to the JSON config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine decisions to stderr")

	root.AddCommand(
		newMeasureCmd(opts),
		newSplitCmd(opts),
		newDetectCmd(opts),
		newPitchCmd(),
		newRecentCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
