package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/service/setup"
)

var (
	// installDir overrides the install directory from the configuration.
	installDir string
	// packageVersion overrides the ios-webkit-debug-proxy release.
	packageVersion string

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Download, build and install ios_webkit_debug_proxy.",
		Long: `Downloads the ios-webkit-debug-proxy source archive, builds it with
autogen.sh, configure and make, and places the binary in the install directory.
Build dependencies (autotools, libimobiledevice, libplist, libusbmuxd, openssl)
must already be present. Only Linux builds are supported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			path, err := setup.Install(ctx, setupOptions())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	uninstallCmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the installed ios_webkit_debug_proxy.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, stop := signalContext()
			defer stop()

			return setup.Uninstall(ctx, setupOptions())
		},
	}

	installedCmd = &cobra.Command{
		Use:   "installed",
		Short: "Print the installed binary path; fail when not installed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			path, err := setup.Installed(ctx, setupOptions())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}
)

func setupOptions() *setup.Options {
	return &setup.Options{
		ConfigPath:     configPath,
		InstallDir:     installDir,
		PackageVersion: packageVersion,
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, command := range []*cobra.Command{installCmd, uninstallCmd, installedCmd} {
		command.Flags().StringVar(&installDir, "install-dir", "", "install directory (overrides install_dir)")
		rootCmd.AddCommand(command)
	}

	installCmd.Flags().StringVar(&packageVersion, "version", "", "ios-webkit-debug-proxy release (overrides package_version)")
}
