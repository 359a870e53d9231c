package security

import (
	"fmt"
	"path/filepath"
)

// SecurePath is an absolute filesystem path that has passed validation. The
// Safe* helpers only accept SecurePaths, so every file the storage layer
// touches has been checked once at construction.
type SecurePath struct {
	path string
}

// NewSecurePathFromExisting wraps an absolute, traversal-free path.
func NewSecurePathFromExisting(p string) (*SecurePath, error) {
	if err := ValidateExistingFilePath(p); err != nil {
		return nil, err
	}
	return &SecurePath{path: filepath.Clean(p)}, nil
}

func (sp *SecurePath) String() string {
	if sp == nil {
		return ""
	}
	return sp.path
}

// Dir returns the parent directory.
func (sp *SecurePath) Dir() *SecurePath {
	if sp == nil {
		return nil
	}
	return &SecurePath{path: filepath.Dir(sp.path)}
}

// Join appends a "/"-separated relative key and rejects anything that would
// escape sp.
func (sp *SecurePath) Join(key string) (*SecurePath, error) {
	if sp == nil {
		return nil, fmt.Errorf("cannot join onto nil SecurePath")
	}
	if err := ValidateStorageKey(key); err != nil {
		return nil, err
	}
	joined, err := SafeJoin(sp.path, filepath.FromSlash(key))
	if err != nil {
		return nil, err
	}
	return &SecurePath{path: joined}, nil
}
