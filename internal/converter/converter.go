// Package converter moves content between images, PDF and text.
package converter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdftoolbox/pdftoolbox/internal/document"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"golang.org/x/image/draw"
)

// Open is document.Open by default, but can be overridden in tests.
var Open document.Opener = document.Open

// ErrNoImages is returned by ImagesToPDF when given no images.
var ErrNoImages = errors.New("no images to convert")

// PageImageName names the rendering of a zero-based page.
func PageImageName(page int) string {
	return fmt.Sprintf("page_%d.png", page)
}

func isGray(m color.Model) bool {
	return m == color.GrayModel || m == color.Gray16Model
}

// ImagesToPDF builds a document with one page per image, in input order.
// The first image sets the colour mode (gray or RGB); later images in the
// other mode are converted before import.
func ImagesToPDF(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	var baseGray bool
	readers := make([]io.Reader, len(images))
	for i, data := range images {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i+1, err)
		}
		gray := isGray(cfg.ColorModel)
		if i == 0 {
			baseGray = gray
		}
		if gray == baseGray {
			readers[i] = bytes.NewReader(data)
			continue
		}
		converted, err := convertMode(data, baseGray)
		if err != nil {
			return nil, fmt.Errorf("failed to convert image %d: %w", i+1, err)
		}
		logging.Debugf("[CONVERTER] Converted image %d to the first image's colour mode", i+1)
		readers[i] = bytes.NewReader(converted)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, pdfcpu.DefaultImportConfig(), model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to build PDF from images: %w", err)
	}
	return out.Bytes(), nil
}

func convertMode(data []byte, toGray bool) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	var dst draw.Image
	if toGray {
		dst = image.NewGray(b)
	} else {
		rgba := image.NewRGBA(b)
		draw.Draw(rgba, b, image.White, image.Point{}, draw.Src)
		dst = rgba
	}
	draw.Draw(dst, b, src, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDFToImages renders every page to PNG at dpi, in page order.
func PDFToImages(data []byte, dpi float64) ([][]byte, error) {
	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	n := doc.PageCount()
	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.RenderPNG(i, dpi)
		if err != nil {
			return nil, err
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// PDFToText concatenates each page's text under a "--- Page N ---"
// banner, N counting from one.
func PDFToText(data []byte) (string, error) {
	doc, err := Open(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.PageCount(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "\n--- Page %d ---\n", i+1)
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
