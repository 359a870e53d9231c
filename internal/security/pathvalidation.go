package security

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrPathTraversal  = errors.New("path contains directory traversal sequences")
	ErrAbsolutePath   = errors.New("absolute paths are not allowed")
	ErrEmptyPath      = errors.New("path cannot be empty")
	ErrInvalidPath    = errors.New("invalid path")
	ErrOutsideBaseDir = errors.New("path is outside allowed base directory")
)

// FallbackFilename is used when sanitising leaves nothing behind.
const FallbackFilename = "upload"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename turns a client-supplied filename into one that is safe to
// create inside the scratch directory: directory components are dropped,
// the name is folded to ASCII, whitespace runs become "_", anything outside
// [A-Za-z0-9_.-] is removed, repeated dots collapse and leading/trailing
// dots and underscores are trimmed. The result is never empty and always
// passes ValidateStorageKey.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.ReplaceAll(name, "\x00", "")
	name = path.Base(name)
	if name == "." || name == "/" {
		return FallbackFilename
	}

	folded, _, err := transform.String(asciiFold, name)
	if err == nil {
		name = folded
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.Trim(name, "._")
	if name == "" {
		return FallbackFilename
	}
	return name
}

// asciiFold decomposes accented characters and drops everything that is
// still outside ASCII, so "Résumé" becomes "Resume".
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// ValidateFilePath accepts clean relative paths only.
func ValidateFilePath(p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if strings.Contains(p, "\x00") {
		return ErrInvalidPath
	}
	if filepath.IsAbs(p) {
		return ErrAbsolutePath
	}
	if strings.Contains(p, "..") {
		return ErrPathTraversal
	}
	clean := filepath.Clean(p)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return ErrPathTraversal
	}
	return nil
}

// ValidateStorageKey is stricter than ValidateFilePath: every "/"-separated
// segment must be non-empty and not "." or "..".
func ValidateStorageKey(key string) error {
	if err := ValidateFilePath(key); err != nil {
		return err
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrPathTraversal
		}
	}
	return nil
}

// SafeJoin joins userPath onto basePath and verifies the result stays
// inside basePath.
func SafeJoin(basePath, userPath string) (string, error) {
	if err := ValidateFilePath(userPath); err != nil {
		return "", err
	}
	if basePath == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	joined := filepath.Join(absBase, userPath)
	if joined != absBase && !strings.HasPrefix(joined, absBase+string(filepath.Separator)) {
		return "", ErrOutsideBaseDir
	}
	return filepath.Join(basePath, userPath), nil
}

// ValidateExistingFilePath accepts absolute paths without traversal.
func ValidateExistingFilePath(p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if strings.Contains(p, "\x00") {
		return ErrInvalidPath
	}
	if !filepath.IsAbs(p) {
		return fmt.Errorf("%w: expected an absolute path", ErrInvalidPath)
	}
	if strings.Contains(p, "..") {
		return ErrPathTraversal
	}
	return nil
}
