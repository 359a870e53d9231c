// Package document opens PDFs for rendering and text extraction.
package document

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// ErrPageOutOfRange is returned for page indices outside [0, PageCount).
var ErrPageOutOfRange = errors.New("page index out of range")

// Document is an opened PDF. Pages are zero-based. Callers must Close it
// on every path.
type Document interface {
	PageCount() int
	RenderPNG(page int, dpi float64) ([]byte, error)
	Text(page int) (string, error)
	Close() error
}

// Opener turns raw bytes into a Document.
type Opener func(data []byte) (Document, error)

// Open parses data with MuPDF.
func Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	mu     sync.Mutex
	doc    *fitz.Document
	closed bool
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPNG(page int, dpi float64) ([]byte, error) {
	if err := d.check(page); err != nil {
		return nil, err
	}
	data, err := d.doc.ImagePNG(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return data, nil
}

func (d *fitzDocument) Text(page int) (string, error) {
	if err := d.check(page); err != nil {
		return "", err
	}
	text, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page, err)
	}
	return text, nil
}

// Close is idempotent.
func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.doc.Close()
}

func (d *fitzDocument) check(page int) error {
	if page < 0 || page >= d.doc.NumPage() {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, d.doc.NumPage())
	}
	return nil
}
