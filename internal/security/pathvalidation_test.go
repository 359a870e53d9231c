package security

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"spaces", "my scan 01.png", "my_scan_01.png"},
		{"unix traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\bob\photo.JPG`, "photo.JPG"},
		{"accents", "Résumé final.pdf", "Resume_final.pdf"},
		{"unsafe characters", "in$voice<2024>.pdf", "invoice2024.pdf"},
		{"hidden file", ".bashrc", "bashrc"},
		{"double dots inside", "draft..v2.pdf", "draft.v2.pdf"},
		{"only unsafe", "%%%", FallbackFilename},
		{"empty", "", FallbackFilename},
		{"trailing slash", "dir/", "dir"},
		{"null byte", "a\x00b.pdf", "ab.pdf"},
		{"non latin", "文件.pdf", "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if err := ValidateStorageKey(got); err != nil {
				t.Errorf("SanitizeFilename(%q) = %q is not a valid key: %v", tt.in, got, err)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid relative path", "file.txt", nil},
		{"valid nested path", "dir/file.txt", nil},
		{"empty path", "", ErrEmptyPath},
		{"path traversal with ..", "../file.txt", ErrPathTraversal},
		{"path traversal in middle", "dir/../file.txt", ErrPathTraversal},
		{"absolute path", "/etc/passwd", ErrAbsolutePath},
		{"null byte", "file\x00.txt", ErrInvalidPath},
		{"just dot", ".", ErrPathTraversal},
		{"just double dot", "..", ErrPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if err != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStorageKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "requests/abc/file.pdf", false},
		{"valid single file", "file.txt", false},
		{"empty key", "", true},
		{"traversal", "requests/../../etc", true},
		{"absolute", "/requests/abc", true},
		{"dot component", "requests/./file.txt", true},
		{"empty component", "requests//file.txt", true},
		{"trailing slash", "requests/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorageKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStorageKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestSafeJoin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping on Windows due to path separator differences")
	}

	tests := []struct {
		name     string
		basePath string
		userPath string
		wantErr  bool
	}{
		{"valid join", "/tmp", "file.txt", false},
		{"valid nested join", "/tmp", "dir/file.txt", false},
		{"relative base", "uploads", "file.txt", false},
		{"path traversal", "/tmp", "../file.txt", true},
		{"absolute user path", "/tmp", "/etc/passwd", true},
		{"empty user path", "/tmp", "", true},
		{"empty base", "", "file.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin(tt.basePath, tt.userPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("SafeJoin() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if want := filepath.Join(tt.basePath, tt.userPath); got != want {
					t.Errorf("SafeJoin() = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestValidateExistingFilePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping on Windows due to path separator differences")
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute", "/tmp/file.txt", false},
		{"absolute nested", "/tmp/dir/file.txt", false},
		{"empty", "", true},
		{"null byte", "/tmp/file\x00.txt", true},
		{"traversal", "/tmp/../etc/passwd", true},
		{"relative", "file.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExistingFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExistingFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
