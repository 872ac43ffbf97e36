package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/webkit-proxy/internal/logger"
	"github.com/oshokin/webkit-proxy/internal/version"
)

const (
	// dirMode is used for the install directory.
	dirMode os.FileMode = 0o755
	// executableMode is applied to the archive and the placed binary.
	executableMode os.FileMode = 0o755
	// tempSuffix marks a download in progress.
	tempSuffix = ".tmp"
)

// download fetches url into the install directory and returns the archive path.
func (b *base) download(ctx context.Context, url string) (string, error) {
	destination := b.layout.ArchivePath()

	if err := b.fetch(ctx, url, destination); err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	return destination, nil
}

func (b *base) fetch(ctx context.Context, url, destination string) error {
	if err := os.MkdirAll(b.layout.InstallDir, dirMode); err != nil {
		return fmt.Errorf("create install directory: %w", err)
	}

	body, err := get(ctx, b.client, url)
	if err != nil {
		return err
	}

	defer func() {
		_ = body.Close()
	}()

	temporary := destination + tempSuffix

	file, err := os.OpenFile(filepath.Clean(temporary), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, executableMode)
	if err != nil {
		return err
	}

	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = b.verifyArchive(temporary)
	}

	if err != nil {
		_ = os.Remove(temporary)

		return err
	}

	if err = os.Rename(temporary, destination); err != nil {
		return err
	}

	// OpenFile is subject to the umask.
	if err = os.Chmod(destination, executableMode); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Archive downloaded", "path", destination, "bytes", written)

	return nil
}

// get issues a GET for url and returns the body of a 200 response.
func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "webkit-proxy/"+version.Short())

	response, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s: %w", response.Status, ErrBadHTTPStatus)
	}

	return response.Body, nil
}

func (b *base) verifyArchive(path string) error {
	if len(b.checksum) == 0 {
		return nil
	}

	actual, err := FileChecksum(path)
	if err != nil {
		return err
	}

	if !bytes.Equal(actual, b.checksum) {
		return ErrChecksumMismatch
	}

	return nil
}

// extract unpacks the archive into the install directory and returns the package directory.
func (b *base) extract(ctx context.Context, archive string) (string, error) {
	if _, err := b.runner.Run(ctx, "", "tar", "xfz", archive, "-C", b.layout.InstallDir); err != nil {
		exitCode, stderr := commandFailure(err)

		return "", &ExtractError{ExitCode: exitCode, Stderr: stderr, Err: err}
	}

	return b.layout.PackageDir(), nil
}

// bootstrap generates the configure script.
func (b *base) bootstrap(ctx context.Context, packageDir string) (string, error) {
	return packageDir, b.buildStep(ctx, StepBootstrap, packageDir, "sh", "autogen.sh")
}

// configure runs the configure script.
func (b *base) configure(ctx context.Context, packageDir string) (string, error) {
	return packageDir, b.buildStep(ctx, StepConfigure, packageDir, "sh", "configure")
}

// compile runs make and returns where the binary is expected.
func (b *base) compile(ctx context.Context, packageDir string) (string, error) {
	if err := b.buildStep(ctx, StepCompile, packageDir, "make"); err != nil {
		return "", err
	}

	return b.layout.BuiltBinaryPath(packageDir), nil
}

func (b *base) buildStep(ctx context.Context, name, packageDir, program string, args ...string) error {
	if _, err := b.runner.Run(ctx, packageDir, program, args...); err != nil {
		exitCode, stderr := commandFailure(err)

		return &BuildStepError{Step: name, ExitCode: exitCode, Stderr: stderr, Err: err}
	}

	return nil
}

// place moves the built binary into the install directory, keeping its base name.
func (b *base) place(ctx context.Context, built string) (string, error) {
	target := filepath.Join(b.layout.InstallDir, filepath.Base(built))

	if err := replaceFile(built, target); err != nil {
		return "", &PlaceError{Source: built, Target: target, Err: err}
	}

	if err := os.Remove(built); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.DebugKV(ctx, "Built binary left in package directory", "path", built, "reason", err)
	}

	return target, nil
}

// replaceFile atomically writes the contents of source to target with
// executable permissions and verifies the result against source's checksum.
func replaceFile(source, target string) error {
	data, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return err
	}

	checksum, err := FileChecksum(source)
	if err != nil {
		return err
	}

	// go-update renames the current target aside, so one has to exist.
	placeholder := false

	if _, err = os.Stat(target); errors.Is(err, os.ErrNotExist) {
		var file *os.File

		file, err = os.Create(filepath.Clean(target))
		if err != nil {
			return err
		}

		_ = file.Close()
		placeholder = true
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: executableMode,
		Checksum:   checksum,
		Hash:       ChecksumFunction,
	}

	err = goupdate.Apply(bytes.NewReader(data), options)
	if err != nil && placeholder {
		// An empty placeholder must not pass for an installed binary.
		_ = os.Remove(target)
	}

	return err
}

// clean removes temporary artifacts and passes the binary path through.
// Failures are logged and never fail the install.
func (b *base) clean(ctx context.Context, binaryPath string) (string, error) {
	b.removeLeftovers(ctx)

	return binaryPath, nil
}

// removeLeftovers deletes the archive and the package directory concurrently.
func (b *base) removeLeftovers(ctx context.Context) {
	var group errgroup.Group

	for _, path := range []string{b.layout.ArchivePath(), b.layout.PackageDir()} {
		group.Go(func() error {
			if err := os.RemoveAll(path); err != nil {
				cleanupErr := &CleanupError{Path: path, Err: err}
				logger.WarnKV(ctx, "Cleanup failed", "error", cleanupErr)

				return cleanupErr
			}

			return nil
		})
	}

	_ = group.Wait()
}
