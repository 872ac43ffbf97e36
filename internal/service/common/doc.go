// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for webkit-proxy-server with timeouts
// and utilities to detect the current system actor (hostname/username), which
// the client sends along with each call so the daemon can log who asked.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
