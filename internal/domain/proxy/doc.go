// Package proxy contains the domain types describing the supervised
// ios_webkit_debug_proxy process.
package proxy
