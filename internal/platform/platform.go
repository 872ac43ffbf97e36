package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Supported operating system names as reported by runtime.GOOS.
const (
	Linux   = "linux"
	Darwin  = "darwin"
	Windows = "windows"
)

// Info describes the host platform.
type Info struct {
	// OS is runtime.GOOS.
	OS string
	// Arch is runtime.GOARCH.
	Arch string
	// Distribution is the Linux distribution id (e.g. "ubuntu"), empty elsewhere.
	Distribution string
	// Family is the distribution family (e.g. "debian").
	Family string
	// Version is the distribution version.
	Version string
}

// String renders the platform for logs.
func (i *Info) String() string {
	if i.Distribution == "" {
		return i.OS + "/" + i.Arch
	}

	return fmt.Sprintf("%s/%s (%s %s)", i.OS, i.Arch, i.Distribution, i.Version)
}

// Detect returns information about the host.
// Distribution lookup failures are not fatal; only a canceled context is.
func Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if info.OS != Linux {
		return info, nil
	}

	distribution, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection canceled: %w", ctx.Err())
		}

		return info, nil
	}

	info.Distribution = strings.ToLower(strings.TrimSpace(distribution))
	info.Family = strings.ToLower(strings.TrimSpace(family))
	info.Version = strings.TrimSpace(version)

	return info, nil
}

// InstallHint returns a command that installs the proxy build dependencies
// with the host package manager, or an empty string when unknown.
func (i *Info) InstallHint() string {
	switch i.Family {
	case "debian":
		return "sudo apt-get install autoconf automake libtool pkg-config " +
			"libimobiledevice-dev libplist-dev libusbmuxd-dev libssl-dev"
	case "rhel", "fedora":
		return "sudo dnf install autoconf automake libtool pkgconf " +
			"libimobiledevice-devel libplist-devel libusbmuxd-devel openssl-devel"
	case "arch":
		return "sudo pacman -S autoconf automake libtool pkgconf libimobiledevice libplist libusbmuxd openssl"
	}

	if i.OS == Darwin {
		return "brew install autoconf automake libtool pkg-config libimobiledevice"
	}

	return ""
}
