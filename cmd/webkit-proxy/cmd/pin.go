package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/webkit-proxy/internal/service/packager"
)

var (
	// dryRun prints the checksum without saving it.
	dryRun bool
	// pinVersion selects the release to pin.
	pinVersion string

	pinCmd = &cobra.Command{
		Use:   "pin",
		Short: "Record the source archive checksum in the configuration file.",
		Long: `Downloads the ios-webkit-debug-proxy source archive, computes its SHA-512
checksum and stores it as archive_checksum, so install rejects any other archive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			checksum, err := packager.Run(ctx, &packager.Options{
				ConfigPath:     configPath,
				PackageVersion: pinVersion,
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), checksum)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	pinCmd.Flags().StringVar(&pinVersion, "version", "", "ios-webkit-debug-proxy release (overrides package_version)")
	pinCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the checksum without saving it")
	rootCmd.AddCommand(pinCmd)
}
