// Package archive bundles multi-file results into a single zip.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrEmpty is returned when there is nothing to archive.
var ErrEmpty = errors.New("no files to archive")

// File is one archive member.
type File struct {
	Name string
	Data []byte
}

// memberName reduces name to its final path element.
func memberName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// Zip writes files, in order, as deflated members named by base name.
// Members share a fixed modification time so equal inputs give equal
// archives.
func Zip(files []File) ([]byte, error) {
	if len(files) == 0 {
		return nil, ErrEmpty
	}
	modified := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		name := memberName(f.Name)
		if name == "." || name == "/" {
			zw.Close()
			return nil, fmt.Errorf("invalid archive member name %q", f.Name)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise archive: %w", err)
	}
	return buf.Bytes(), nil
}
