// Package version exposes build metadata for webkit-proxy.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. ProxyPackage names the upstream proxy release installed when
// the configuration does not pin one.
package version
