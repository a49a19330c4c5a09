// Package security confines file access to configured directories
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator resolves file names inside one directory and rejects
// paths that leave it, following symlinks
type PathValidator struct {
	directory string
}

// NewPathValidator creates a validator for directory. The directory does
// not need to exist yet.
func NewPathValidator(directory string) (*PathValidator, error) {
	if directory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{directory: directory}, nil
}

// Directory returns the configured directory
func (v *PathValidator) Directory() string {
	return v.directory
}

// Resolve returns the absolute path of name. Relative names are taken
// relative to the configured directory; absolute ones must lie inside it.
func (v *PathValidator) Resolve(name string) (string, error) {
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(v.directory, name)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := v.Within(abs)
	if err != nil {
		return "", err
	}
	if !within {
		return "", fmt.Errorf("path is outside configured directory: %s", name)
	}
	return abs, nil
}

// Within reports whether path lies inside the configured directory. Any
// path is accepted while the directory does not exist.
func (v *PathValidator) Within(path string) (bool, error) {
	if _, err := os.Stat(v.directory); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(v.directory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	dirs := []string{absDir}
	if real, err := filepath.EvalSymlinks(absDir); err == nil && real != absDir {
		dirs = append(dirs, real)
	}

	candidates := []string{absPath}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		real, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return false, fmt.Errorf("failed to resolve symlink %s: %w", path, err)
		}
		candidates = append(candidates, real)
	}

	// Every form of the path must be inside one form of the directory
	for _, p := range candidates {
		if !inside(p, dirs) {
			return false, nil
		}
	}
	return true, nil
}

func inside(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
