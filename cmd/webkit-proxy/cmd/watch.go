package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/service/checker"
)

var (
	// pollInterval is the delay between status checks.
	pollInterval = checker.DefaultPollInterval
	// restart starts the proxy again whenever it is found stopped.
	restart bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll webkit-proxy-server and optionally keep the proxy running.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, stop := signalContext()
			defer stop()

			return checker.Run(ctx, &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				Restart:       restart,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().StringVarP(&serverAddress, "server", "s", "", "webkit-proxy-server address (overrides daemon_addr)")
	watchCmd.Flags().DurationVarP(&pollInterval, "interval", "i", checker.DefaultPollInterval, "delay between checks")
	watchCmd.Flags().BoolVarP(&restart, "restart", "r", false, "start the proxy whenever it is not running")
	rootCmd.AddCommand(watchCmd)
}
