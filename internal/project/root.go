// Package project locates and reads the nesc.toml manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const ManifestName = "nesc.toml"

// boundary marks a repository root; the search does not leave it.
const boundary = ".git"

// FindManifest looks for nesc.toml in startDir and its parents, stopping
// at the first directory that holds a .git entry or at the filesystem root.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		found, err := exists(candidate)
		if err != nil {
			return "", false, err
		}
		if found {
			return candidate, true, nil
		}
		if stop, err := exists(filepath.Join(dir, boundary)); err != nil || stop {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
}
