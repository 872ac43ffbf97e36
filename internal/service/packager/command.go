package packager

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/logger"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is the settings file to update (defaults to webkit-proxy.yaml).
	ConfigPath string
	// PackageVersion replaces the configured version before pinning when set.
	PackageVersion string
	// DryRun prints the checksum without saving the settings.
	DryRun bool

	// client overrides the HTTP client; tests point it at httptest servers.
	client *http.Client
}

// Run pins the archive checksum and returns it base64-encoded.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "webkit-proxy-pin")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load configuration: %w", err)
	}

	if opts.PackageVersion != "" {
		cfg.PackageVersion = opts.PackageVersion
	}

	client := opts.client
	if client == nil {
		client = &http.Client{Timeout: cfg.StepTimeout}
	}

	url := cfg.ArchiveURLFor()
	logger.InfoKV(ctx, "Hashing source archive", "url", url)

	sum, err := installer.RemoteChecksum(ctx, client, url)
	if err != nil {
		return "", err
	}

	checksum := base64.StdEncoding.EncodeToString(sum)
	if opts.DryRun {
		return checksum, nil
	}

	cfg.ArchiveChecksum = checksum

	if err = config.Save(opts.ConfigPath, cfg); err != nil {
		return "", fmt.Errorf("save settings: %w", err)
	}

	logger.InfoKV(ctx, "Archive checksum pinned", "version", cfg.PackageVersion, "settings", configPath(opts.ConfigPath))

	return checksum, nil
}

func configPath(path string) string {
	if path == "" {
		return config.DefaultConfigFilename
	}

	return path
}
