package installer

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	// Register SHA-512 for ChecksumFunction.
	_ "crypto/sha512"
)

// ChecksumFunction verifies downloaded archives and placed binaries.
const ChecksumFunction = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// FileChecksum returns the ChecksumFunction digest of the file at path.
func FileChecksum(path string) ([]byte, error) {
	if !ChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := ChecksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// RemoteChecksum downloads url and returns its ChecksumFunction digest
// without keeping the body.
func RemoteChecksum(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if !ChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	if client == nil {
		client = http.DefaultClient
	}

	body, err := get(ctx, client, url)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	defer func() {
		_ = body.Close()
	}()

	hasher := ChecksumFunction.New()
	if _, err = io.Copy(hasher, body); err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	return hasher.Sum(nil), nil
}
