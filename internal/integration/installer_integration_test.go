//go:build linux

package integration

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/webkit-proxy/internal/config"
	domain "github.com/oshokin/webkit-proxy/internal/domain/proxy"
	"github.com/oshokin/webkit-proxy/internal/installer"
	"github.com/oshokin/webkit-proxy/internal/supervisor"
)

const sourceVersion = "1.4"

// makefile builds a shell script in place of the real proxy.
const makefile = "all:\n" +
	"\tmkdir -p src\n" +
	"\tprintf '#!/bin/sh\\nexec sleep 30\\n' > src/" + installer.BinaryName + "\n" +
	"\tchmod +x src/" + installer.BinaryName + "\n"

// sourceArchive returns a tar.gz shaped like an upstream release archive.
func sourceArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buffer bytes.Buffer

	gz := gzip.NewWriter(&buffer)
	tw := tar.NewWriter(gz)

	for name, contents := range files {
		header := &tar.Header{
			Name:    installer.PackagePrefix + sourceVersion + "/" + name,
			Mode:    0o755,
			Size:    int64(len(contents)),
			ModTime: time.Now(),
		}

		require.NoError(t, tw.WriteHeader(header))

		_, err := tw.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	return buffer.Bytes()
}

func requireTools(t *testing.T, tools ...string) {
	t.Helper()

	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s is not available: %v", tool, err)
		}
	}
}

func newInstallConfig(t *testing.T, archive []byte) *config.Config {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		InstallDir:     filepath.Join(t.TempDir(), config.DefaultInstallDirName),
		PackageVersion: sourceVersion,
		ArchiveURL:     server.URL + "/{version}.tar.gz",
		SettleTimeout:  100 * time.Millisecond,
		KillTimeout:    time.Second,
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestInstaller_BuildsAndRuns installs from a generated archive with the
// real toolchain, runs the result and uninstalls it.
func TestInstaller_BuildsAndRuns(t *testing.T) {
	t.Parallel()
	requireTools(t, "tar", "sh", "make")

	ctx := context.Background()
	cfg := newInstallConfig(t, sourceArchive(t, map[string]string{
		"autogen.sh": "#!/bin/sh\nexit 0\n",
		"configure":  "#!/bin/sh\nexit 0\n",
		"Makefile":   makefile,
	}))

	inst, err := installer.New(cfg)
	require.NoError(t, err)

	path, err := inst.Install(ctx)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.InstallDir, installer.BinaryName), path)

	layout := installer.NewLayout(cfg.InstallDir, cfg.PackageVersion)
	require.NoFileExists(t, layout.ArchivePath())
	require.NoDirExists(t, layout.PackageDir())

	sup := supervisor.NewFromConfig(inst, cfg)

	status, err := sup.Start(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusStarted, status)
	require.True(t, sup.IsRunning())

	status, err = sup.Stop(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.StatusStopped, status)
	require.False(t, sup.IsRunning())

	require.NoError(t, inst.Uninstall(ctx))

	_, err = inst.IsInstalled(ctx)
	require.ErrorIs(t, err, installer.ErrNotInstalled)

	_, err = os.Stat(cfg.InstallDir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestInstaller_ConfigureFailure reports the failing step with its stderr.
func TestInstaller_ConfigureFailure(t *testing.T) {
	t.Parallel()
	requireTools(t, "tar", "sh")

	cfg := newInstallConfig(t, sourceArchive(t, map[string]string{
		"autogen.sh": "#!/bin/sh\nexit 0\n",
		"configure":  "#!/bin/sh\necho 'libimobiledevice not found' >&2\nexit 1\n",
	}))

	inst, err := installer.New(cfg)
	require.NoError(t, err)

	_, err = inst.Install(context.Background())

	var stepErr *installer.BuildStepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, installer.StepConfigure, stepErr.Step)
	require.Equal(t, 1, stepErr.ExitCode)
	require.Contains(t, stepErr.Stderr, "libimobiledevice not found")
}
