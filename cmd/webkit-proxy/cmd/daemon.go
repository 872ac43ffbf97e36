package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/service/client"
)

var (
	// serverAddress overrides daemon_addr from the configuration.
	serverAddress string
	// force makes stop kill stray proxy processes by name.
	force bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the proxy through webkit-proxy-server.",
		Long: `Asks webkit-proxy-server to start ios_webkit_debug_proxy. The proxy counts as
started when it survives the settling window (200ms by default).`,
		Args: cobra.NoArgs,
		RunE: daemonAction(client.ActionStart),
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the proxy through webkit-proxy-server.",
		Long: `Asks webkit-proxy-server to interrupt ios_webkit_debug_proxy. With --force,
every process running the proxy binary is killed afterwards, even when the
daemon cannot be reached.`,
		Args: cobra.NoArgs,
		RunE: daemonAction(client.ActionStop),
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show whether the proxy is running.",
		Args:  cobra.NoArgs,
		RunE:  daemonAction(client.ActionStatus),
	}
)

func daemonAction(action client.Action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		state, err := client.Run(ctx, &client.Options{
			ConfigPath:    configPath,
			ServerAddress: serverAddress,
			Action:        action,
			Force:         force,
		})
		if err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), state)

		return nil
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, command := range []*cobra.Command{startCmd, stopCmd, statusCmd} {
		command.Flags().StringVarP(&serverAddress, "server", "s", "", "webkit-proxy-server address (overrides daemon_addr)")
		rootCmd.AddCommand(command)
	}

	stopCmd.Flags().BoolVarP(&force, "force", "f", false, "also kill stray proxy processes by name")
}
