package security

import (
	"fmt"
	"os"
)

// ErrNilPath is returned by the Safe* helpers when handed a nil SecurePath.
var ErrNilPath = fmt.Errorf("%w: nil SecurePath", ErrInvalidPath)

func checked(op string, sp *SecurePath) (string, error) {
	if sp == nil {
		return "", fmt.Errorf("%s: %w", op, ErrNilPath)
	}
	return sp.path, nil
}

func SafeCreate(sp *SecurePath) (*os.File, error) {
	p, err := checked("create", sp)
	if err != nil {
		return nil, err
	}
	return os.Create(p)
}

func SafeOpen(sp *SecurePath) (*os.File, error) {
	p, err := checked("open", sp)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func SafeStat(sp *SecurePath) (os.FileInfo, error) {
	p, err := checked("stat", sp)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func SafeMkdirAll(sp *SecurePath, perm os.FileMode) error {
	p, err := checked("mkdir", sp)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, perm)
}

// SafeRename moves oldpath onto newpath, replacing it if present.
func SafeRename(oldpath, newpath *SecurePath) error {
	from, err := checked("rename", oldpath)
	if err != nil {
		return err
	}
	to, err := checked("rename", newpath)
	if err != nil {
		return err
	}
	return os.Rename(from, to)
}

// SafeRemoveIfExists removes a file; a missing file or nil path is not an
// error.
func SafeRemoveIfExists(sp *SecurePath) error {
	if sp == nil {
		return nil
	}
	if err := os.Remove(sp.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SafeRemoveAll removes a whole directory tree, such as one request's
// scratch area.
func SafeRemoveAll(sp *SecurePath) error {
	p, err := checked("remove", sp)
	if err != nil {
		return err
	}
	return os.RemoveAll(p)
}
