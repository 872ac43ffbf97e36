package integration

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/webkit-proxy/internal/installer"
)

const (
	// longRunningProxy keeps running until interrupted; no exec so the process keeps the proxy name.
	longRunningProxy = "#!/bin/sh\nwhile :; do sleep 1; done\n"
	// crashingProxy exits inside the settling window.
	crashingProxy = "#!/bin/sh\nexit 3\n"
)

// reservePort returns address on a free TCP port and closes it.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// installStub places script as the proxy binary in a fresh install directory.
func installStub(t *testing.T, script string) string {
	t.Helper()

	installDir := filepath.Join(t.TempDir(), "install")
	require.NoError(t, os.MkdirAll(installDir, 0o755))

	//nolint:gosec // The stub must be executable.
	require.NoError(t, os.WriteFile(filepath.Join(installDir, installer.BinaryName), []byte(script), 0o755))

	return installDir
}
