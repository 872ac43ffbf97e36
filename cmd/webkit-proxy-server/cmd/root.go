package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/service/server"
	"github.com/oshokin/webkit-proxy/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the proxy state is persisted.
	stateFile string

	// rootCmd represents the base command for running the gRPC server.
	rootCmd = &cobra.Command{
		Use:   "webkit-proxy-server [listen-address]",
		Short: "Run the daemon that owns the ios_webkit_debug_proxy process.",
		Long: `Starts the gRPC server that starts, stops and reports on ios_webkit_debug_proxy.

The daemon listens on daemon_addr from the configuration file (127.0.0.1:9220 by
default). A listen address argument overrides it (e.g., :9230, 127.0.0.1:9300).
The proxy state is persisted to a JSON file; a proxy left running by a previous
daemon is killed on startup. Stopping the daemon stops the proxy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the webkit-proxy-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist proxy state (defaults to state_file setting)")
}
