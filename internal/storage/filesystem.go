package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/security"
)

// ErrNotFound is returned by Get and Stat for unknown keys.
var ErrNotFound = errors.New("key not found")

// FilesystemBackend keeps objects as plain files under a base directory.
type FilesystemBackend struct {
	base *security.SecurePath
}

// NewFilesystemBackend resolves basePath to an absolute directory and
// creates it if needed.
func NewFilesystemBackend(basePath string) (*FilesystemBackend, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory %s: %w", basePath, err)
	}
	base, err := security.NewSecurePathFromExisting(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory %s: %w", basePath, err)
	}
	if err := security.SafeMkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory %s: %w", abs, err)
	}
	return &FilesystemBackend{base: base}, nil
}

// BasePath returns the absolute working directory.
func (fs *FilesystemBackend) BasePath() string {
	return fs.base.String()
}

// Put writes to a sibling ".part" file and renames it into place, so a
// reader never observes a half-written object.
func (fs *FilesystemBackend) Put(ctx context.Context, key string, data io.Reader) error {
	target, err := fs.keyToPath(key)
	if err != nil {
		return fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	partial, err := fs.keyToPath(key + ".part")
	if err != nil {
		return fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	if err := security.SafeMkdirAll(target.Dir(), 0755); err != nil {
		logging.Logf("[STORAGE] ERROR: Failed to create directory %s: %v", target.Dir(), err)
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	file, err := security.SafeCreate(partial)
	if err != nil {
		logging.Logf("[STORAGE] ERROR: Failed to create file %s: %v", partial, err)
		return fmt.Errorf("failed to create file %s: %w", key, err)
	}
	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		security.SafeRemoveIfExists(partial)
		return fmt.Errorf("failed to write data to %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		security.SafeRemoveIfExists(partial)
		return fmt.Errorf("failed to flush %s: %w", key, err)
	}
	if err := security.SafeRename(partial, target); err != nil {
		security.SafeRemoveIfExists(partial)
		return fmt.Errorf("failed to finalise %s: %w", key, err)
	}
	return nil
}

func (fs *FilesystemBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := fs.keyToPath(key)
	if err != nil {
		return nil, fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	file, err := security.SafeOpen(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", key, err)
	}
	return file, nil
}

func (fs *FilesystemBackend) Delete(ctx context.Context, key string) error {
	p, err := fs.keyToPath(key)
	if err != nil {
		return fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	if err := security.SafeRemoveIfExists(p); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (fs *FilesystemBackend) DeletePrefix(ctx context.Context, prefix string) error {
	p, err := fs.keyToPath(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return fmt.Errorf("invalid storage prefix %s: %w", prefix, err)
	}
	if err := security.SafeRemoveAll(p); err != nil {
		return fmt.Errorf("failed to delete prefix %s: %w", prefix, err)
	}
	return nil
}

func (fs *FilesystemBackend) List(ctx context.Context, prefix string) ([]string, error) {
	p, err := fs.keyToPath(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage prefix %s: %w", prefix, err)
	}
	var keys []string
	if _, err := security.SafeStat(p); os.IsNotExist(err) {
		return keys, nil
	}

	err = filepath.Walk(p.String(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasSuffix(path, ".part") {
			return nil
		}
		if key := fs.pathToKey(path); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FilesystemBackend) Exists(ctx context.Context, key string) (bool, error) {
	p, err := fs.keyToPath(key)
	if err != nil {
		return false, fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	if _, err := security.SafeStat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence of %s: %w", key, err)
	}
	return true, nil
}

func (fs *FilesystemBackend) Stat(ctx context.Context, key string) (*StorageInfo, error) {
	p, err := fs.keyToPath(key)
	if err != nil {
		return nil, fmt.Errorf("invalid storage key %s: %w", key, err)
	}
	info, err := security.SafeStat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get info for %s: %w", key, err)
	}
	return &StorageInfo{
		Key:      key,
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

func (fs *FilesystemBackend) keyToPath(key string) (*security.SecurePath, error) {
	return fs.base.Join(key)
}

func (fs *FilesystemBackend) pathToKey(path string) string {
	rel, err := filepath.Rel(fs.base.String(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
