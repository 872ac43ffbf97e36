// Package foreground runs the proxy attached to the terminal without the
// daemon: start, wait for a signal or for the proxy to die, then stop.
package foreground
