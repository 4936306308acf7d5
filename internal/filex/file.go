// Package filex prepares on-disk locations used by the file-backed storage.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir, and any missing parents, readable only by the owner.
// A relative dir is resolved against the working directory. The absolute
// path is returned.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// DataFile returns the path of name inside dir, creating dir first. An
// absolute name is returned unchanged and dir is left alone.
func DataFile(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	abs, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, name), nil
}
