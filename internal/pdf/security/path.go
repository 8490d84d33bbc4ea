// Package security keeps tool-supplied paths inside the directory the
// scanner was configured with.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pdferrors "github.com/a3tai/pdf-abstract-scanner/internal/pdf/errors"
)

// PathValidator confines file access to one directory tree
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does not
// have to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeConfig, "sandbox directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeConfig, "failed to resolve sandbox directory", err)
	}

	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute sandbox directory
func (v *PathValidator) Root() string {
	return v.root
}

// ValidatePath checks that path resolves to a location inside the sandbox
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return outside(path, "path cannot be empty")
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "path validation failed", err).WithFile(path)
	}
	if !within {
		return outside(path, "path is outside the PDF directory")
	}
	return nil
}

// IsPathWithinDirectory reports whether path, and the target of path when it
// is a symlink, lie inside the sandbox.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if _, err := os.Stat(v.root); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	roots := []string{v.root}
	if resolved, err := filepath.EvalSymlinks(v.root); err == nil && resolved != v.root {
		roots = append(roots, resolved)
	}

	return underAny(cleanPath, roots) && underAny(realPath, roots), nil
}

// Resolve strips NUL bytes, joins relative paths onto the sandbox and
// validates the result. It returns the absolute path.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", outside(path, "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", pdferrors.WrapError(pdferrors.ErrorTypeInvalidFile, "failed to resolve path", err).WithFile(path)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if path == root || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func outside(path, message string) error {
	return pdferrors.NewPDFErrorWithContext(pdferrors.ErrorTypeInvalidFile, message, path).WithFile(path)
}
