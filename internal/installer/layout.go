package installer

import "path/filepath"

const (
	// BinaryName is the executable produced by the upstream build.
	BinaryName = "ios_webkit_debug_proxy"
	// PackagePrefix is the top-level directory prefix inside the upstream tarball.
	PackagePrefix = "ios-webkit-debug-proxy-"
	// archiveSuffix is appended to the version to name the downloaded tarball.
	archiveSuffix = ".tar.gz"
	// sourceDir is where make leaves the binary inside the package directory.
	sourceDir = "src"
)

// Layout derives every path the installer touches from the install directory
// and the package version.
type Layout struct {
	// InstallDir holds the archive, the extracted package and the final binary.
	InstallDir string
	// Version is the upstream release being installed.
	Version string
}

// NewLayout returns a Layout with a cleaned install directory.
func NewLayout(installDir, version string) Layout {
	return Layout{
		InstallDir: filepath.Clean(installDir),
		Version:    version,
	}
}

// ArchivePath is where the tarball is downloaded.
func (l Layout) ArchivePath() string {
	return filepath.Join(l.InstallDir, l.Version+archiveSuffix)
}

// PackageDir is the directory tar extracts.
func (l Layout) PackageDir() string {
	return filepath.Join(l.InstallDir, PackagePrefix+l.Version)
}

// BuiltBinaryPath is where make leaves the binary inside packageDir.
func (l Layout) BuiltBinaryPath(packageDir string) string {
	return filepath.Join(packageDir, sourceDir, BinaryName)
}

// BinaryPath is the installed binary.
func (l Layout) BinaryPath() string {
	return filepath.Join(l.InstallDir, BinaryName)
}
