package handlers

import (
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdftoolbox/pdftoolbox/internal/archive"
	"github.com/pdftoolbox/pdftoolbox/internal/compressor"
	"github.com/pdftoolbox/pdftoolbox/internal/converter"
	"github.com/pdftoolbox/pdftoolbox/internal/pdfprocessor"
	"github.com/pdftoolbox/pdftoolbox/internal/security"
	"github.com/pdftoolbox/pdftoolbox/internal/storage"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
)

const (
	msgNoImages     = "No valid image files selected."
	msgNoPDF        = "Invalid or no PDF file provided."
	msgNoPDFs       = "No valid PDF files selected."
	msgBadLevel     = "Invalid compression level."
	msgBadQuality   = "Invalid image quality. Use an integer between 1 and 100."
	msgBadOrder     = "Invalid page order. Use comma-separated zero-based page numbers."
	msgEmptyOrder   = "Page order does not select any page of this document."
	fieldImages     = "files[]"
	fieldPDF        = "pdf"
	fieldPDFs       = "pdfs[]"
	fieldCompImages = "images[]"
)

// singlePDF collects and stages the one PDF a single-document endpoint
// works on.
func (h *Handler) singlePDF(c *gin.Context, s *storage.Scratch) (upload.File, []byte, error) {
	files, err := h.collect(c, fieldPDF, upload.KindPDF, msgNoPDF)
	if err != nil {
		return upload.File{}, nil, err
	}
	staged, err := h.stage(c.Request.Context(), s, files[:1])
	if err != nil {
		return upload.File{}, nil, err
	}
	return files[0], staged[0], nil
}

func zipArtifact(name string, files []archive.File) (artifact, error) {
	data, err := archive.Zip(files)
	if err != nil {
		return artifact{}, failed("creating archive", err)
	}
	return artifact{Name: name, ContentType: contentTypeZip, Data: data}, nil
}

// ConvertImage turns the uploaded images into one PDF, a page per image.
func (h *Handler) ConvertImage(c *gin.Context, s *storage.Scratch) (artifact, error) {
	files, err := h.collect(c, fieldImages, upload.KindImage, msgNoImages)
	if err != nil {
		return artifact{}, err
	}
	images, err := h.stage(c.Request.Context(), s, files)
	if err != nil {
		return artifact{}, err
	}
	pdf, err := converter.ImagesToPDF(images)
	if err != nil {
		return artifact{}, failed("converting images", err)
	}
	return artifact{Name: "converted.pdf", ContentType: contentTypePDF, Data: pdf}, nil
}

// CompressPDF rewrites the PDF at the requested compression-level.
func (h *Handler) CompressPDF(c *gin.Context, s *storage.Scratch) (artifact, error) {
	_, data, err := h.singlePDF(c, s)
	if err != nil {
		return artifact{}, err
	}
	level := h.cfg.DefaultCompressionLevel
	if raw, ok := c.GetPostForm("compression-level"); ok {
		level, err = strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return artifact{}, invalid("%s", msgBadLevel)
		}
	}
	out, err := compressor.CompressPDF(data, level)
	if err != nil {
		return artifact{}, failed("compressing PDF", err)
	}
	return artifact{Name: "compressed.pdf", ContentType: contentTypePDF, Data: out}, nil
}

// ConvertPDFToImage renders every page to PNG and zips them.
func (h *Handler) ConvertPDFToImage(c *gin.Context, s *storage.Scratch) (artifact, error) {
	_, data, err := h.singlePDF(c, s)
	if err != nil {
		return artifact{}, err
	}
	pages, err := converter.PDFToImages(data, h.cfg.RenderDPI)
	if err != nil {
		return artifact{}, failed("converting PDF", err)
	}
	files := make([]archive.File, len(pages))
	for i, p := range pages {
		files[i] = archive.File{Name: converter.PageImageName(i), Data: p}
	}
	return zipArtifact("pages_images.zip", files)
}

// SplitPDF zips one single-page PDF per page.
func (h *Handler) SplitPDF(c *gin.Context, s *storage.Scratch) (artifact, error) {
	_, data, err := h.singlePDF(c, s)
	if err != nil {
		return artifact{}, err
	}
	pages, err := pdfprocessor.Split(data)
	if err != nil {
		return artifact{}, failed("splitting PDF", err)
	}
	files := make([]archive.File, len(pages))
	for i, p := range pages {
		files[i] = archive.File{Name: pdfprocessor.SplitPageName(i + 1), Data: p}
	}
	return zipArtifact("split_pages.zip", files)
}

// MergePDF concatenates the uploaded PDFs in submission order.
func (h *Handler) MergePDF(c *gin.Context, s *storage.Scratch) (artifact, error) {
	files, err := h.collect(c, fieldPDFs, upload.KindPDF, msgNoPDFs)
	if err != nil {
		return artifact{}, err
	}
	docs, err := h.stage(c.Request.Context(), s, files)
	if err != nil {
		return artifact{}, err
	}
	merged, err := pdfprocessor.Merge(docs)
	if err != nil {
		return artifact{}, failed("merging PDFs", err)
	}
	return artifact{Name: "merged.pdf", ContentType: contentTypePDF, Data: merged}, nil
}

// textName is the download name for extracted text: the upload's stem
// with a .txt extension.
func textName(filename string) string {
	name := security.SanitizeFilename(filename)
	stem := strings.TrimSuffix(name, path.Ext(name))
	if stem == "" {
		stem = security.FallbackFilename
	}
	return stem + ".txt"
}

// ConvertPDFToText extracts text page by page.
func (h *Handler) ConvertPDFToText(c *gin.Context, s *storage.Scratch) (artifact, error) {
	f, data, err := h.singlePDF(c, s)
	if err != nil {
		return artifact{}, err
	}
	text, err := converter.PDFToText(data)
	if err != nil {
		return artifact{}, failed("converting PDF", err)
	}
	return artifact{Name: textName(f.Name), ContentType: contentTypeText, Data: []byte(text)}, nil
}

// CompressImage re-encodes each image in its own format and zips them.
func (h *Handler) CompressImage(c *gin.Context, s *storage.Scratch) (artifact, error) {
	files, err := h.collect(c, fieldCompImages, upload.KindImage, msgNoImages)
	if err != nil {
		return artifact{}, err
	}
	quality := h.cfg.ImageQuality
	if raw, ok := c.GetPostForm("quality"); ok {
		quality, err = strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || quality < compressor.MinQuality || quality > compressor.MaxQuality {
			return artifact{}, invalid("%s", msgBadQuality)
		}
	}
	images, err := h.stage(c.Request.Context(), s, files)
	if err != nil {
		return artifact{}, err
	}

	out := make([]archive.File, len(images))
	for i, img := range images {
		data, _, err := compressor.CompressImage(img, quality)
		if err != nil {
			return artifact{}, failed("compressing "+files[i].Name, err)
		}
		out[i] = archive.File{Name: "compressed_" + security.SanitizeFilename(files[i].Name), Data: data}
	}
	return zipArtifact("compressed_images.zip", out)
}

// RearrangePDF reorders pages by the optional order field, reversing them
// when it is absent.
func (h *Handler) RearrangePDF(c *gin.Context, s *storage.Scratch) (artifact, error) {
	_, data, err := h.singlePDF(c, s)
	if err != nil {
		return artifact{}, err
	}

	var out []byte
	raw := strings.TrimSpace(c.PostForm("order"))
	if raw == "" {
		out, err = pdfprocessor.Reverse(data)
	} else {
		order, perr := pdfprocessor.ParseOrder(raw)
		if perr != nil {
			return artifact{}, invalid("%s", msgBadOrder)
		}
		out, err = pdfprocessor.Rearrange(data, order)
	}
	if errors.Is(err, pdfprocessor.ErrEmptyOrder) {
		return artifact{}, invalid("%s", msgEmptyOrder)
	}
	if err != nil {
		return artifact{}, failed("rearranging PDF", err)
	}
	return artifact{Name: "rearranged.pdf", ContentType: contentTypePDF, Data: out}, nil
}
