package installer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/platform"
)

// Installer installs, removes and locates the proxy binary.
type Installer interface {
	// Install runs the platform pipeline and returns the installed binary path.
	Install(ctx context.Context) (string, error)
	// Uninstall removes the installed binary. Removing nothing is not an error.
	Uninstall(ctx context.Context) error
	// IsInstalled returns the binary path, or ErrNotInstalled.
	IsInstalled(ctx context.Context) (string, error)
}

// Option customizes an Installer built by New.
type Option func(*settings)

type settings struct {
	goos   string
	runner CommandRunner
	client *http.Client
}

// WithPlatform overrides runtime.GOOS when choosing the variant.
func WithPlatform(goos string) Option {
	return func(s *settings) {
		s.goos = goos
	}
}

// WithRunner replaces the os/exec command runner.
func WithRunner(runner CommandRunner) Option {
	return func(s *settings) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithHTTPClient replaces the client used for the archive download.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client != nil {
			s.client = client
		}
	}
}

// New returns the Installer variant for the host platform configured by cfg.
//
//nolint:ireturn // The variant is chosen at runtime; callers only need the interface.
func New(cfg *config.Config, opts ...Option) (Installer, error) {
	if cfg == nil {
		return nil, errors.New("installer configuration is not set")
	}

	s := &settings{
		goos:   runtime.GOOS,
		runner: ExecRunner{},
		client: new(http.Client),
	}

	for _, opt := range opts {
		opt(s)
	}

	var checksum []byte

	if cfg.ArchiveChecksum != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.ArchiveChecksum)
		if err != nil {
			return nil, fmt.Errorf("decode archive checksum: %w", err)
		}

		checksum = decoded
	}

	b := &base{
		layout:      NewLayout(cfg.InstallDir, cfg.PackageVersion),
		archiveURL:  cfg.ArchiveURLFor(),
		checksum:    checksum,
		stepTimeout: cfg.StepTimeout,
		runner:      s.runner,
		client:      s.client,
	}

	return forPlatform(s.goos, b), nil
}

//nolint:ireturn // See New.
func forPlatform(goos string, b *base) Installer {
	switch goos {
	case platform.Linux:
		return &linuxInstaller{base: b}
	case platform.Darwin, platform.Windows:
		return &unimplementedInstaller{base: b, platform: goos}
	default:
		return &unsupportedInstaller{base: b, platform: goos}
	}
}

// base carries what every variant shares: paths, download settings and the runner.
type base struct {
	layout      Layout
	archiveURL  string
	checksum    []byte
	stepTimeout time.Duration
	runner      CommandRunner
	client      *http.Client
}

// Layout returns the paths used by the installer.
func (b *base) Layout() Layout {
	return b.layout
}

// IsInstalled reports whether a regular file exists at the binary path.
func (b *base) IsInstalled(_ context.Context) (string, error) {
	path := b.layout.BinaryPath()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotInstalled
		}

		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return "", ErrNotInstalled
	}

	return path, nil
}

// unimplementedInstaller stands in for platforms that are known but cannot build yet.
type unimplementedInstaller struct {
	*base

	platform string
}

func (u *unimplementedInstaller) Install(context.Context) (string, error) {
	return "", fmt.Errorf("%s: %w", u.platform, ErrNotImplemented)
}

func (u *unimplementedInstaller) Uninstall(context.Context) error {
	return fmt.Errorf("%s: %w", u.platform, ErrNotImplemented)
}

// unsupportedInstaller is returned for operating systems nobody modeled.
type unsupportedInstaller struct {
	*base

	platform string
}

func (u *unsupportedInstaller) Install(context.Context) (string, error) {
	return "", &UnsupportedPlatformError{Platform: u.platform}
}

func (u *unsupportedInstaller) Uninstall(context.Context) error {
	return &UnsupportedPlatformError{Platform: u.platform}
}
