// Package installer downloads, builds and places the ios_webkit_debug_proxy
// binary.
//
// Installation is a strictly linear pipeline of steps: download the source
// tarball, extract it with tar, run autogen.sh, configure and make, move the
// built binary into the install directory and remove temporary artifacts.
// Each step receives the previous step's artifact (a URL, an archive path, a
// package directory, a binary path) and returns the next one. The first
// failing step aborts the pipeline and its typed error is returned as is.
//
// Only Linux builds from source. macOS and Windows variants exist but report
// ErrNotImplemented; any other platform reports UnsupportedPlatformError.
package installer
