// Package filex holds the small file-system helpers used when bootstrapping
// the local vault.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrBadSecretFile = errors.New("secret file has unexpected size")

// EnsureParentDir creates the directory that will hold path, readable only by
// the current user.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// ReadOrCreateSecret returns the size-byte secret stored at path. A missing
// file is created with fresh bytes from gen and mode 0600.
func ReadOrCreateSecret(path string, size int, gen func(int) []byte) ([]byte, error) {
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(b) != size {
			return nil, fmt.Errorf("%s: %w", path, ErrBadSecretFile)
		}
		return b, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if _, err := EnsureParentDir(path); err != nil {
		return nil, err
	}

	b = gen(size)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", path, err)
	}
	return b, nil
}
