package packager

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/installer"
)

// archiveServer serves body at /<version>.tar.gz.
func archiveServer(t *testing.T, version string, body []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/"+version+".tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// TestRun_PinsChecksum writes the archive digest into the settings file.
func TestRun_PinsChecksum(t *testing.T) {
	t.Parallel()

	body := []byte("source archive")
	server := archiveServer(t, "1.9", body)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		InstallDir: filepath.Join(dir, "install"),
		ArchiveURL: server.URL + "/{version}.tar.gz",
	}))

	checksum, err := Run(context.Background(), &Options{
		ConfigPath:     cfgPath,
		PackageVersion: "1.9",
		client:         server.Client(),
	})
	require.NoError(t, err)

	sum := sha512.Sum512(body)
	require.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), checksum)

	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, checksum, loaded.ArchiveChecksum)
	require.Equal(t, "1.9", loaded.PackageVersion)
}

// TestRun_DryRun leaves the settings untouched.
func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, "2.0", []byte("other"))

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		InstallDir:     filepath.Join(dir, "install"),
		PackageVersion: "2.0",
		ArchiveURL:     server.URL + "/{version}.tar.gz",
	}))

	checksum, err := Run(context.Background(), &Options{ConfigPath: cfgPath, DryRun: true, client: server.Client()})
	require.NoError(t, err)
	require.NotEmpty(t, checksum)

	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Empty(t, loaded.ArchiveChecksum)
}

// TestRun_MissingArchive reports the download failure.
func TestRun_MissingArchive(t *testing.T) {
	t.Parallel()

	server := archiveServer(t, "1.0", nil)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		InstallDir:     filepath.Join(dir, "install"),
		PackageVersion: "3.0",
		ArchiveURL:     server.URL + "/{version}.tar.gz",
	}))

	_, err := Run(context.Background(), &Options{ConfigPath: cfgPath, client: server.Client()})
	require.ErrorIs(t, err, installer.ErrBadHTTPStatus)
}
