package installer

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled is returned when the proxy binary is missing.
	ErrNotInstalled = errors.New("ios-webkit-debug-proxy is not installed")
	// ErrNotImplemented is returned by platform variants that cannot install yet.
	ErrNotImplemented = errors.New("installation is not implemented for this platform")
	// ErrUnsupportedPlatform matches every *UnsupportedPlatformError.
	ErrUnsupportedPlatform = errors.New("no such platform")
	// ErrBadHTTPStatus is wrapped by DownloadError for non-200 responses.
	ErrBadHTTPStatus = errors.New("unexpected http status")
	// ErrChecksumMismatch is wrapped by DownloadError when the archive checksum differs.
	ErrChecksumMismatch = errors.New("archive checksum mismatch")
)

// UnsupportedPlatformError reports an operating system with no installer variant.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedPlatform, e.Platform)
}

// Is makes errors.Is(err, ErrUnsupportedPlatform) hold.
func (e *UnsupportedPlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// DownloadError reports a failed archive download.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ExtractError reports a failed tar invocation.
// ExitCode is -1 when tar could not be started at all.
type ExtractError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract archive (exit code %d): %s", e.ExitCode, detail(e.Stderr, e.Err))
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// BuildStepError reports a failed bootstrap, configure or compile step.
type BuildStepError struct {
	Step     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *BuildStepError) Error() string {
	return fmt.Sprintf("%s step (exit code %d): %s", e.Step, e.ExitCode, detail(e.Stderr, e.Err))
}

func (e *BuildStepError) Unwrap() error {
	return e.Err
}

// PlaceError reports a failure to move the built binary into the install directory.
type PlaceError struct {
	Source string
	Target string
	Err    error
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("move %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *PlaceError) Unwrap() error {
	return e.Err
}

// CleanupError reports a temporary artifact that could not be removed.
// It is logged and never returned from Install or Uninstall.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// detail prefers captured stderr over the process error.
func detail(stderr string, err error) string {
	if stderr != "" {
		return stderr
	}

	if err != nil {
		return err.Error()
	}

	return "unknown error"
}
