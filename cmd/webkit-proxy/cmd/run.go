package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/service/foreground"
)

var (
	// installFirst builds the proxy before running it when missing.
	installFirst bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the proxy in the foreground until interrupted.",
		Long: `Starts ios_webkit_debug_proxy without the daemon and keeps it running until
SIGINT or SIGTERM, then stops it. Fails if the proxy exits on its own.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, stop := signalContext()
			defer stop()

			return foreground.Run(ctx, &foreground.Options{
				ConfigPath: configPath,
				Install:    installFirst,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().BoolVarP(&installFirst, "install", "i", false, "install the proxy first when it is missing")
	rootCmd.AddCommand(runCmd)
}
