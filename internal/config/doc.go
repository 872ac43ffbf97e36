// Package config defines the settings used by the webkit-proxy binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Validate fills every unset field with its default, so a zero Config becomes
// a usable one: install directory under the user's home, upstream archive URL,
// settling window and daemon address.
package config
