package installer

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/platform"
)

// testVersion is the package version served by archiveServer.
const testVersion = "1.4"

var errToolMissing = errors.New("executable file not found in $PATH")

// fakeToolchain pretends to be tar, sh and make.
// tar creates the package directory and make drops a binary into src/.
type fakeToolchain struct {
	mu sync.Mutex
	// calls records "program args..." for every invocation.
	calls []string
	// fail maps a command line to the error it should return.
	fail map[string]error
}

func (f *fakeToolchain) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, line)
	f.mu.Unlock()

	if err, ok := f.fail[line]; ok {
		return nil, err
	}

	switch name {
	case "tar":
		// tar xfz <archive> -C <installDir>
		installDir := args[3]
		packageDir := filepath.Join(installDir, PackagePrefix+testVersion)

		return nil, os.MkdirAll(filepath.Join(packageDir, "src"), 0o755)
	case "make":
		return nil, os.WriteFile(filepath.Join(dir, "src", BinaryName), []byte("#!/bin/sh\nsleep 60\n"), 0o755)
	default:
		return nil, nil
	}
}

func (f *fakeToolchain) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

// archiveServer serves body at /<version>.tar.gz and counts requests.
func archiveServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/"+testVersion+".tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func newTestConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()

	cfg := &config.Config{
		InstallDir:     filepath.Join(t.TempDir(), config.DefaultInstallDirName),
		PackageVersion: testVersion,
		ArchiveURL:     serverURL + "/{version}.tar.gz",
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

func newLinuxInstaller(t *testing.T, cfg *config.Config, toolchain CommandRunner) Installer {
	t.Helper()

	inst, err := New(cfg, WithPlatform(platform.Linux), WithRunner(toolchain))
	require.NoError(t, err)

	return inst
}

// TestInstall_Roundtrip installs, checks, uninstalls and checks again.
func TestInstall_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := archiveServer(t, http.StatusOK, []byte("tarball"))
	cfg := newTestConfig(t, server.URL)
	toolchain := new(fakeToolchain)
	inst := newLinuxInstaller(t, cfg, toolchain)
	layout := NewLayout(cfg.InstallDir, cfg.PackageVersion)

	binaryPath, err := inst.Install(ctx)
	require.NoError(t, err)
	require.Equal(t, layout.BinaryPath(), binaryPath)

	require.Equal(t, []string{
		"tar xfz " + layout.ArchivePath() + " -C " + cfg.InstallDir,
		"sh autogen.sh",
		"sh configure",
		"make",
	}, toolchain.commands())

	info, err := os.Stat(binaryPath)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o100, "binary must be executable")

	// Temporary artifacts are gone.
	require.NoFileExists(t, layout.ArchivePath())
	require.NoDirExists(t, layout.PackageDir())

	installed, err := inst.IsInstalled(ctx)
	require.NoError(t, err)
	require.Equal(t, binaryPath, installed)

	require.NoError(t, inst.Uninstall(ctx))

	_, err = inst.IsInstalled(ctx)
	require.ErrorIs(t, err, ErrNotInstalled)

	// Idempotent.
	require.NoError(t, inst.Uninstall(ctx))
	require.NoDirExists(t, cfg.InstallDir)
}

// TestInstall_ReplacesExistingBinary ensures a second install overwrites the first binary.
func TestInstall_ReplacesExistingBinary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := archiveServer(t, http.StatusOK, []byte("tarball"))
	cfg := newTestConfig(t, server.URL)
	inst := newLinuxInstaller(t, cfg, new(fakeToolchain))

	require.NoError(t, os.MkdirAll(cfg.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InstallDir, BinaryName), []byte("stale"), 0o755))

	binaryPath, err := inst.Install(ctx)
	require.NoError(t, err)

	contents, err := os.ReadFile(binaryPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "sleep 60")
}

// TestInstall_DownloadFailureStopsPipeline verifies that no later step runs after a failed download.
func TestInstall_DownloadFailureStopsPipeline(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, http.StatusNotFound, nil)
	cfg := newTestConfig(t, server.URL)
	toolchain := new(fakeToolchain)
	inst := newLinuxInstaller(t, cfg, toolchain)

	_, err := inst.Install(context.Background())

	var downloadErr *DownloadError

	require.ErrorAs(t, err, &downloadErr)
	require.ErrorIs(t, err, ErrBadHTTPStatus)
	require.Equal(t, cfg.ArchiveURLFor(), downloadErr.URL)
	require.Empty(t, toolchain.commands(), "extract must not run")

	_, err = inst.IsInstalled(context.Background())
	require.ErrorIs(t, err, ErrNotInstalled)
}

// TestInstall_ChecksumMismatch rejects an archive whose digest differs from the configured one.
func TestInstall_ChecksumMismatch(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, http.StatusOK, []byte("tampered"))
	cfg := newTestConfig(t, server.URL)

	sum := sha512.Sum512([]byte("original"))
	cfg.ArchiveChecksum = base64.StdEncoding.EncodeToString(sum[:])

	toolchain := new(fakeToolchain)
	inst := newLinuxInstaller(t, cfg, toolchain)

	_, err := inst.Install(context.Background())
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.Empty(t, toolchain.commands())
	require.NoFileExists(t, NewLayout(cfg.InstallDir, cfg.PackageVersion).ArchivePath())
}

// TestInstall_ChecksumMatch accepts an archive with the configured digest.
func TestInstall_ChecksumMatch(t *testing.T) {
	t.Parallel()

	body := []byte("tarball")
	server := archiveServer(t, http.StatusOK, body)
	cfg := newTestConfig(t, server.URL)

	sum := sha512.Sum512(body)
	cfg.ArchiveChecksum = base64.StdEncoding.EncodeToString(sum[:])

	_, err := newLinuxInstaller(t, cfg, new(fakeToolchain)).Install(context.Background())
	require.NoError(t, err)
}

// TestInstall_ExtractFailure surfaces tar's exit code and stderr.
func TestInstall_ExtractFailure(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, http.StatusOK, []byte("not gzip"))
	cfg := newTestConfig(t, server.URL)
	layout := NewLayout(cfg.InstallDir, cfg.PackageVersion)

	toolchain := &fakeToolchain{
		fail: map[string]error{
			"tar xfz " + layout.ArchivePath() + " -C " + cfg.InstallDir: &CommandError{
				Command:  "tar",
				ExitCode: 2,
				Stderr:   "gzip: stdin: not in gzip format",
			},
		},
	}

	_, err := newLinuxInstaller(t, cfg, toolchain).Install(context.Background())

	var extractErr *ExtractError

	require.ErrorAs(t, err, &extractErr)
	require.Equal(t, 2, extractErr.ExitCode)
	require.Equal(t, "gzip: stdin: not in gzip format", extractErr.Stderr)
	require.Len(t, toolchain.commands(), 1)
}

// TestInstall_BuildStepFailure stops at the failing toolchain step and reports its name.
func TestInstall_BuildStepFailure(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		command string
		calls   int
	}{
		StepBootstrap: {command: "sh autogen.sh", calls: 2},
		StepConfigure: {command: "sh configure", calls: 3},
		StepCompile:   {command: "make", calls: 4},
	}

	for stepName, tc := range cases {
		t.Run(stepName, func(t *testing.T) {
			t.Parallel()

			server := archiveServer(t, http.StatusOK, []byte("tarball"))
			cfg := newTestConfig(t, server.URL)
			toolchain := &fakeToolchain{
				fail: map[string]error{
					tc.command: &CommandError{Command: tc.command, ExitCode: 1, Stderr: "libimobiledevice not found"},
				},
			}

			_, err := newLinuxInstaller(t, cfg, toolchain).Install(context.Background())

			var buildErr *BuildStepError

			require.ErrorAs(t, err, &buildErr)
			require.Equal(t, stepName, buildErr.Step)
			require.Equal(t, 1, buildErr.ExitCode)
			require.Equal(t, "libimobiledevice not found", buildErr.Stderr)
			require.Len(t, toolchain.commands(), tc.calls)
		})
	}
}

// TestInstall_MissingToolReportsNegativeExitCode covers a toolchain program that cannot start.
func TestInstall_MissingToolReportsNegativeExitCode(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, http.StatusOK, []byte("tarball"))
	cfg := newTestConfig(t, server.URL)
	toolchain := &fakeToolchain{fail: map[string]error{"make": errToolMissing}}

	_, err := newLinuxInstaller(t, cfg, toolchain).Install(context.Background())

	var buildErr *BuildStepError

	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, -1, buildErr.ExitCode)
	require.ErrorIs(t, err, errToolMissing)
}

// TestInstall_PlaceFailure reports a PlaceError when make produced no binary.
func TestInstall_PlaceFailure(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, http.StatusOK, []byte("tarball"))
	cfg := newTestConfig(t, server.URL)
	toolchain := &fakeToolchain{fail: map[string]error{"make": nil}}

	// A nil entry makes the fake return success without writing the binary.
	_, err := newLinuxInstaller(t, cfg, toolchain).Install(context.Background())

	var placeErr *PlaceError

	require.ErrorAs(t, err, &placeErr)
	require.Equal(t, filepath.Join(cfg.InstallDir, BinaryName), placeErr.Target)
}

// TestInstall_PlaceFailureLeavesNothingInstalled makes go-update fail to write
// the new binary and checks no empty file is left behind as the installed one.
func TestInstall_PlaceFailureLeavesNothingInstalled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	server := archiveServer(t, http.StatusOK, []byte("tarball"))
	cfg := newTestConfig(t, server.URL)
	inst := newLinuxInstaller(t, cfg, new(fakeToolchain))

	// go-update stages the binary as .<name>.new next to the target.
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.InstallDir, "."+BinaryName+".new"), 0o755))

	_, err := inst.Install(ctx)

	var placeErr *PlaceError
	require.ErrorAs(t, err, &placeErr)
	require.Equal(t, filepath.Join(cfg.InstallDir, BinaryName), placeErr.Target)

	_, err = inst.IsInstalled(ctx)
	require.ErrorIs(t, err, ErrNotInstalled)
	require.NoFileExists(t, filepath.Join(cfg.InstallDir, BinaryName))
}

// TestForPlatform checks the variant chosen for each operating system.
func TestForPlatform(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := newTestConfig(t, "https://example.com")

	for _, goos := range []string{platform.Darwin, platform.Windows} {
		inst, err := New(cfg, WithPlatform(goos))
		require.NoError(t, err)

		_, err = inst.Install(ctx)
		require.ErrorIs(t, err, ErrNotImplemented, goos)
		require.ErrorIs(t, inst.Uninstall(ctx), ErrNotImplemented, goos)
	}

	inst, err := New(cfg, WithPlatform("plan9"))
	require.NoError(t, err)

	_, err = inst.Install(ctx)
	require.ErrorIs(t, err, ErrUnsupportedPlatform)

	var platformErr *UnsupportedPlatformError

	require.ErrorAs(t, err, &platformErr)
	require.Equal(t, "plan9", platformErr.Platform)

	// The existence check does not depend on the platform.
	_, err = inst.IsInstalled(ctx)
	require.ErrorIs(t, err, ErrNotInstalled)
}

// TestIsInstalled_DirectoryIsNotABinary treats a directory at the binary path as not installed.
func TestIsInstalled_DirectoryIsNotABinary(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "https://example.com")
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.InstallDir, BinaryName), 0o755))

	inst, err := New(cfg, WithPlatform(platform.Linux))
	require.NoError(t, err)

	_, err = inst.IsInstalled(context.Background())
	require.ErrorIs(t, err, ErrNotInstalled)
}

// TestRemoteChecksum hashes a served archive and reports HTTP failures.
func TestRemoteChecksum(t *testing.T) {
	t.Parallel()

	body := []byte("release tarball")
	server := archiveServer(t, http.StatusOK, body)

	sum, err := RemoteChecksum(context.Background(), server.Client(), server.URL+"/"+testVersion+".tar.gz")
	require.NoError(t, err)

	want := sha512.Sum512(body)
	require.Equal(t, want[:], sum)

	_, err = RemoteChecksum(context.Background(), nil, server.URL+"/missing.tar.gz")

	var downloadErr *DownloadError
	require.ErrorAs(t, err, &downloadErr)
	require.ErrorIs(t, err, ErrBadHTTPStatus)
}
