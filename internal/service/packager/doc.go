// Package packager implements the pin command.
//
// It downloads the configured ios-webkit-debug-proxy source archive, computes
// its SHA-512 checksum and writes the checksum (and optionally a new package
// version) into the settings file, so later installs verify what they build.
package packager
