package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/config"
	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/version"
)

var (
	// configPath stores the configuration file path.
	configPath string
	// logLevel overrides the log level from the configuration file.
	logLevel string

	// rootCmd represents the base command; every action is a subcommand.
	rootCmd = &cobra.Command{
		Use:   "webkit-proxy",
		Short: "Install and control ios_webkit_debug_proxy.",
		Long: `Builds ios_webkit_debug_proxy from source into a per-user directory and
controls the running proxy.

install, uninstall and installed work locally. start, stop and status talk to
webkit-proxy-server, which owns the proxy process. run keeps the proxy in the
foreground without the daemon.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if logLevel == "" {
				return nil
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the webkit-proxy CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// printState writes the status line, and the PID when the proxy runs.
func printState(w io.Writer, state *domain.State) {
	if state.Running && state.PID > 0 {
		_, _ = fmt.Fprintf(w, "%s (pid %d)\n", state.Status, state.PID)
		return
	}

	_, _ = fmt.Fprintln(w, state.Status)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
