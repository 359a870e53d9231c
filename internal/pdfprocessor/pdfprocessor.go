// Package pdfprocessor restructures PDF page trees: split, merge and
// reorder.
package pdfprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
)

var (
	// ErrNoDocuments is returned by Merge when given nothing to merge.
	ErrNoDocuments = errors.New("no documents to merge")
	// ErrEmptyOrder means no requested page index was inside the document.
	ErrEmptyOrder = errors.New("page order selects no pages")
	// ErrInvalidOrder means a page order string could not be parsed.
	ErrInvalidOrder = errors.New("invalid page order")
)

func read(data []byte) (*model.Context, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

func write(ctx *model.Context) ([]byte, error) {
	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return out.Bytes(), nil
}

// extract builds a new document from zero-based page indices, in the
// order given.
func extract(ctx *model.Context, pages []int) ([]byte, error) {
	nrs := make([]int, len(pages))
	for i, p := range pages {
		nrs[i] = p + 1
	}
	sub, err := pdfcpu.ExtractPages(ctx, nrs, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}
	return write(sub)
}

// SplitPageName names the single-page document for one-based page n.
func SplitPageName(n int) string {
	return fmt.Sprintf("page_%d.pdf", n)
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}

// Split returns one single-page document per page, in page order.
func Split(data []byte) ([][]byte, error) {
	ctx, err := read(data)
	if err != nil {
		return nil, err
	}

	pages := make([][]byte, 0, ctx.PageCount)
	for i := 0; i < ctx.PageCount; i++ {
		page, err := extract(ctx, []int{i})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	logging.Debugf("[PDFPROCESSOR] Split document into %d page(s)", len(pages))
	return pages, nil
}

// Merge concatenates documents in list order.
func Merge(docs [][]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, ErrNoDocuments
	case 1:
		ctx, err := read(docs[0])
		if err != nil {
			return nil, err
		}
		return write(ctx)
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge PDFs: %w", err)
	}
	logging.Debugf("[PDFPROCESSOR] Merged %d document(s)", len(docs))
	return out.Bytes(), nil
}

// Rearrange emits the pages named by order (zero-based), in that order.
// Indices outside the document are skipped; repeats are kept.
func Rearrange(data []byte, order []int) ([]byte, error) {
	ctx, err := read(data)
	if err != nil {
		return nil, err
	}

	pages := make([]int, 0, len(order))
	for _, p := range order {
		if p < 0 || p >= ctx.PageCount {
			logging.Debugf("[PDFPROCESSOR] Skipping page index %d outside [0,%d)", p, ctx.PageCount)
			continue
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, ErrEmptyOrder
	}
	return extract(ctx, pages)
}

// Reverse emits the pages last to first.
func Reverse(data []byte) ([]byte, error) {
	ctx, err := read(data)
	if err != nil {
		return nil, err
	}
	pages := make([]int, ctx.PageCount)
	for i := range pages {
		pages[i] = ctx.PageCount - 1 - i
	}
	if len(pages) == 0 {
		return nil, ErrEmptyOrder
	}
	return extract(ctx, pages)
}

// ParseOrder reads a comma-separated list of zero-based page indices.
// Blank entries are ignored.
func ParseOrder(s string) ([]int, error) {
	var order []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a page index", ErrInvalidOrder, field)
		}
		order = append(order, n)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no page indices given", ErrInvalidOrder)
	}
	return order, nil
}
