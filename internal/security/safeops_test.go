package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeOperations(t *testing.T) {
	tempDir := t.TempDir()
	base, err := NewSecurePathFromExisting(tempDir)
	if err != nil {
		t.Fatalf("Failed to create SecurePath: %v", err)
	}

	t.Run("create, stat, rename, remove", func(t *testing.T) {
		dir, err := base.Join("requests/r1")
		if err != nil {
			t.Fatal(err)
		}
		if err := SafeMkdirAll(dir, 0755); err != nil {
			t.Fatalf("SafeMkdirAll() error = %v", err)
		}

		part, _ := base.Join("requests/r1/in.pdf.part")
		final, _ := base.Join("requests/r1/in.pdf")

		f, err := SafeCreate(part)
		if err != nil {
			t.Fatalf("SafeCreate() error = %v", err)
		}
		f.WriteString("data")
		f.Close()

		if err := SafeRename(part, final); err != nil {
			t.Fatalf("SafeRename() error = %v", err)
		}
		info, err := SafeStat(final)
		if err != nil || info.Size() != 4 {
			t.Fatalf("SafeStat() = %v, %v", info, err)
		}

		rf, err := SafeOpen(final)
		if err != nil {
			t.Fatalf("SafeOpen() error = %v", err)
		}
		rf.Close()

		if err := SafeRemoveIfExists(final); err != nil {
			t.Errorf("SafeRemoveIfExists() error = %v", err)
		}
		if err := SafeRemoveIfExists(final); err != nil {
			t.Errorf("SafeRemoveIfExists() on missing file error = %v", err)
		}
	})

	t.Run("SafeRemoveAll", func(t *testing.T) {
		nested := filepath.Join(tempDir, "requests", "r2", "out")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}
		tree, _ := base.Join("requests/r2")
		if err := SafeRemoveAll(tree); err != nil {
			t.Fatalf("SafeRemoveAll() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(tempDir, "requests", "r2")); !os.IsNotExist(err) {
			t.Errorf("tree should be gone, stat err = %v", err)
		}
	})

	t.Run("nil SecurePath operations", func(t *testing.T) {
		var sp *SecurePath
		if _, err := SafeCreate(sp); !errors.Is(err, ErrNilPath) {
			t.Errorf("SafeCreate(nil) error = %v, want ErrNilPath", err)
		}
		if _, err := SafeOpen(sp); err == nil {
			t.Error("SafeOpen(nil) should return error")
		}
		if _, err := SafeStat(sp); err == nil {
			t.Error("SafeStat(nil) should return error")
		}
		if err := SafeMkdirAll(sp, 0755); err == nil {
			t.Error("SafeMkdirAll(nil) should return error")
		}
		if err := SafeRename(sp, sp); err == nil {
			t.Error("SafeRename(nil) should return error")
		}
		if err := SafeRemoveAll(sp); err == nil {
			t.Error("SafeRemoveAll(nil) should return error")
		}
		if err := SafeRemoveIfExists(sp); err != nil {
			t.Error("SafeRemoveIfExists(nil) should not return error")
		}
	})
}
