// Package setup implements the install, uninstall and installed commands.
//
// Each command builds the platform installer from the loaded settings and
// runs a single operation on it. Nothing here talks to webkit-proxy-server.
package setup
