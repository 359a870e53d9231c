// Package pdftest builds small PDF and image fixtures for tests.
package pdftest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func fill(img interface {
	Set(x, y int, c color.Color)
}, w, h int, c color.Color) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
}

// PNG encodes a solid w×h RGBA image.
func PNG(tb testing.TB, w, h int, c color.Color) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, w, h, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// GrayPNG encodes a solid w×h grayscale image.
func GrayPNG(tb testing.TB, w, h int, y uint8) []byte {
	tb.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	fill(img, w, h, color.Gray{Y: y})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// JPEG encodes a w×h gradient at quality 100 so re-encoding shrinks it.
func JPEG(tb testing.TB, w, h int) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8((x ^ y) * 3), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		tb.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PDF returns a document with one page per width. Each page is an image
// of that width and a fixed height, so page order can be checked through
// page dimensions.
func PDF(tb testing.TB, widths ...int) []byte {
	tb.Helper()
	if len(widths) == 0 {
		tb.Fatal("pdftest.PDF needs at least one page")
	}
	readers := make([]io.Reader, len(widths))
	for i, w := range widths {
		readers[i] = bytes.NewReader(PNG(tb, w, 40, color.RGBA{R: uint8(40 * i), G: 120, B: 200, A: 255}))
	}
	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, pdfcpu.DefaultImportConfig(), model.NewDefaultConfiguration()); err != nil {
		tb.Fatalf("build pdf: %v", err)
	}
	return out.Bytes()
}

// Pages builds a document with n pages of distinct widths 100, 110, ...
func Pages(tb testing.TB, n int) []byte {
	tb.Helper()
	widths := make([]int, n)
	for i := range widths {
		widths[i] = 100 + 10*i
	}
	return PDF(tb, widths...)
}

// PageCount reads the page count of data.
func PageCount(tb testing.TB, data []byte) int {
	tb.Helper()
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		tb.Fatalf("page count: %v", err)
	}
	return n
}

// PageWidths returns each page's width in points, in page order.
func PageWidths(tb testing.TB, data []byte) []int {
	tb.Helper()
	dims, err := api.PageDims(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		tb.Fatalf("page dims: %v", err)
	}
	widths := make([]int, len(dims))
	for i, d := range dims {
		widths[i] = int(d.Width + 0.5)
	}
	return widths
}
