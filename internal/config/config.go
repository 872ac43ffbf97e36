package config

import (
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/version"
)

// Config holds the settings shared by the webkit-proxy binaries.
type Config struct {
	// InstallDir is where the archive is unpacked and the proxy binary is placed.
	InstallDir string `yaml:"install_dir"`
	// PackageVersion is the ios-webkit-debug-proxy release to build.
	PackageVersion string `yaml:"package_version"`
	// ArchiveURL is the source tarball location; "{version}" is replaced with PackageVersion.
	ArchiveURL string `yaml:"archive_url"`
	// ArchiveChecksum is an optional base64 SHA-512 checksum of the tarball.
	ArchiveChecksum string `yaml:"archive_checksum,omitempty"`
	// StepTimeout bounds the download and every toolchain step of the install.
	StepTimeout time.Duration `yaml:"step_timeout"`
	// SettleTimeout is how long a freshly spawned proxy must survive to count as started.
	SettleTimeout time.Duration `yaml:"settle_timeout"`
	// KillTimeout is how long a stopped proxy may linger after SIGINT before it is killed.
	KillTimeout time.Duration `yaml:"kill_timeout"`
	// ReadinessAddress is an optional TCP address polled after the settling window.
	ReadinessAddress string `yaml:"readiness_addr,omitempty"`
	// DaemonAddress is the gRPC address of webkit-proxy-server.
	DaemonAddress string `yaml:"daemon_addr"`
	// Timeout is the per-RPC timeout used by the CLI.
	Timeout time.Duration `yaml:"timeout"`
	// StateFile is the JSON file where the daemon records the supervised proxy.
	StateFile string `yaml:"state_file"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFile enables a rotated log file next to console output when set.
	LogFile string `yaml:"log_file,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "webkit-proxy.yaml"

	// DefaultInstallDirName is the directory created under the user's home.
	DefaultInstallDirName = ".node-ios-webkit-debug-proxy"

	// DefaultStateFilename is the daemon state file name inside the install directory.
	DefaultStateFilename = "webkit-proxy-state.json"

	// DefaultArchiveURL is the upstream tarball template.
	DefaultArchiveURL = "https://github.com/google/ios-webkit-debug-proxy/archive/{version}.tar.gz"

	// VersionPlaceholder is substituted in ArchiveURL.
	VersionPlaceholder = "{version}"

	// DefaultDaemonAddress is where webkit-proxy-server listens by default.
	DefaultDaemonAddress = "127.0.0.1:9220"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultStepTimeout bounds each install step.
	DefaultStepTimeout = 10 * time.Minute

	// DefaultSettleTimeout is the settling window after spawning the proxy.
	DefaultSettleTimeout = 200 * time.Millisecond

	// DefaultKillTimeout is the grace period between SIGINT and SIGKILL.
	DefaultKillTimeout = 5 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadChecksum is returned when archive_checksum is not a base64 SHA-512 digest.
	errBadChecksum = errors.New("archive checksum must be a base64 SHA-512 digest")
	// errBadLogLevel is returned for unknown log levels.
	errBadLogLevel = errors.New("unknown log level")
)

// Default returns a configuration populated with default values.
func Default() (*Config, error) {
	cfg := new(Config)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default location yields the default configuration.
func Load(path string) (*Config, error) {
	usingDefault := path == "" || path == DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if usingDefault && errors.Is(err, os.ErrNotExist) {
			return Default()
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for formatting errors.
//
//nolint:cyclop // Each field is checked independently; splitting would not help.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.InstallDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}

		cfg.InstallDir = filepath.Join(home, DefaultInstallDirName)
	}

	cfg.InstallDir = filepath.Clean(cfg.InstallDir)

	if cfg.PackageVersion == "" {
		cfg.PackageVersion = version.ProxyPackage
	}

	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}

	if _, err := url.ParseRequestURI(cfg.ArchiveURLFor()); err != nil {
		return fmt.Errorf("invalid archive URL: %w", err)
	}

	if cfg.ArchiveChecksum != "" {
		sum, err := base64.StdEncoding.DecodeString(cfg.ArchiveChecksum)
		if err != nil || len(sum) != sha512.Size {
			return errBadChecksum
		}
	}

	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = DefaultStepTimeout
	}

	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = DefaultSettleTimeout
	}

	if cfg.KillTimeout <= 0 {
		cfg.KillTimeout = DefaultKillTimeout
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.DaemonAddress == "" {
		cfg.DaemonAddress = DefaultDaemonAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.DaemonAddress); err != nil {
		return fmt.Errorf("invalid daemon address: %w", err)
	}

	if cfg.ReadinessAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.ReadinessAddress); err != nil {
			return fmt.Errorf("invalid readiness address: %w", err)
		}
	}

	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(cfg.InstallDir, DefaultStateFilename)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, cfg.LogLevel)
	}

	return nil
}

// ArchiveURLFor returns the tarball URL with the package version substituted.
func (c *Config) ArchiveURLFor() string {
	return strings.ReplaceAll(c.ArchiveURL, VersionPlaceholder, c.PackageVersion)
}
