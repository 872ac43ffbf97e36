// Package state persists the supervised proxy state between daemon runs.
//
// FileRepository stores the state as protobuf JSON on disk. The daemon reads
// it on startup to find a proxy left behind by a previous run.
package state
