// Package checker implements the watch command: it polls webkit-proxy-server
// and, when asked to, starts the proxy again whenever it is found stopped.
package checker
