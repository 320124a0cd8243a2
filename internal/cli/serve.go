package cli

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/rooftakeoff/internal/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the measurement API over HTTP",
		Long: `Start the HTTP API. The port comes from $PORT, falling back to the
server_port in the config file. READ_TIMEOUT and WRITE_TIMEOUT are in
seconds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig()
			if err != nil {
				return err
			}
			return server.Run(server.LoadConfig(cfg.ServerPort), cfg)
		},
	}
}
