// Package client implements the webkit-proxy commands that talk to
// webkit-proxy-server: start, stop and status.
//
// A forced stop also kills stray proxy processes by name, which works even
// when the daemon is gone.
package client
