// Package upload decides which multipart files a request carries are fit
// for processing.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
)

// Kind is the family of content an endpoint operates on.
type Kind int

const (
	KindPDF Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var (
	// ErrNoValidFiles means every file under the field was missing or had a
	// disallowed extension.
	ErrNoValidFiles = errors.New("no valid files provided")
	// ErrTooLarge means the request body exceeds the configured ceiling.
	ErrTooLarge = errors.New("request body too large")
)

// ContentMismatchError reports an upload whose bytes are not of the kind
// its endpoint accepts.
type ContentMismatchError struct {
	Filename string
	Detected string
	Want     Kind
}

func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("%s is not a valid %s file (detected %s)", e.Filename, e.Want, e.Detected)
}

// File is one accepted upload, fully read into memory.
type File struct {
	Name         string
	DeclaredType string
	DetectedType string
	Data         []byte
}

// AllowedFile reports whether the lowercase extension after the last dot is
// in allowed. Names without a dot never pass.
func AllowedFile(name string, allowed []string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(name[idx+1:])
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// ExceedsLimit reports whether a declared Content-Length is over limit.
// Unknown lengths (-1) are left to the body reader.
func ExceedsLimit(contentLength, limit int64) bool {
	return limit > 0 && contentLength > limit
}

// Collect reads every file under field whose extension is allowed and whose
// content matches kind. Disallowed extensions are dropped silently; a file
// with an allowed extension but the wrong content fails the whole request.
func Collect(form *multipart.Form, field string, kind Kind, allowed []string) ([]File, error) {
	if form == nil {
		return nil, ErrNoValidFiles
	}
	headers := form.File[field]

	var files []File
	for _, fh := range headers {
		if fh == nil || fh.Filename == "" {
			continue
		}
		if !AllowedFile(fh.Filename, allowed) {
			logging.Debugf("[UPLOAD] Skipping %q under %s: extension not allowed", fh.Filename, field)
			continue
		}
		f, err := read(fh)
		if err != nil {
			return nil, err
		}
		if !Matches(f.DetectedType, kind) {
			return nil, &ContentMismatchError{Filename: fh.Filename, Detected: f.DetectedType, Want: kind}
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, ErrNoValidFiles
	}
	return files, nil
}

// CollectOne is Collect for single-file fields; the first accepted file wins.
func CollectOne(form *multipart.Form, field string, kind Kind, allowed []string) (File, error) {
	files, err := Collect(form, field, kind, allowed)
	if err != nil {
		return File{}, err
	}
	return files[0], nil
}

func read(fh *multipart.FileHeader) (File, error) {
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return File{}, ErrTooLarge
		}
		return File{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return File{
		Name:         fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		DetectedType: Sniff(data),
		Data:         data,
	}, nil
}

// Sniff returns the MIME type detected from the leading bytes of data.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// Matches reports whether a detected MIME type belongs to kind.
func Matches(detected string, kind Kind) bool {
	mt := strings.TrimSpace(strings.Split(detected, ";")[0])
	switch kind {
	case KindPDF:
		return mt == "application/pdf"
	case KindImage:
		return mt == "image/png" || mt == "image/jpeg"
	default:
		return false
	}
}
