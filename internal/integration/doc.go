// Package integration holds end-to-end tests that start the real daemon and
// run the real installer toolchain against generated source archives.
package integration
