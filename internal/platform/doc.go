// Package platform reports the host operating system, architecture and, on
// Linux, the distribution. The installer picks its variant from Info.OS and
// logs the rest so build failures can be matched to a distribution.
package platform
