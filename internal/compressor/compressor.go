package compressor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
)

const (
	MinLevel = 0
	MaxLevel = 9

	MinQuality = 1
	MaxQuality = 100
)

// ErrUnsupportedImage is returned for image formats other than PNG and JPEG.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ClampLevel fits level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	return min(max(level, MinLevel), MaxLevel)
}

// levelConfig maps a compression level onto pdfcpu's writer settings.
//
//	0    rewrite only
//	1-3  optimize (dedupe fonts, images and objects)
//	4-6  + object streams and xref stream
//	7-9  + duplicate content streams and resource dictionaries
func levelConfig(level int) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.Optimize = level >= 1
	conf.WriteObjectStream = level >= 4
	conf.WriteXRefStream = level >= 4
	conf.OptimizeDuplicateContentStreams = level >= 7
	conf.OptimizeResourceDicts = level >= 7
	return conf
}

// CompressPDF rewrites data at level, clamped to [0, 9]. Page count is
// preserved.
func CompressPDF(data []byte, level int) ([]byte, error) {
	level = ClampLevel(level)
	conf := levelConfig(level)

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate PDF: %w", err)
	}
	if conf.Optimize {
		if err := api.OptimizeContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to optimize PDF: %w", err)
		}
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write compressed PDF: %w", err)
	}
	logging.Debugf("[COMPRESSOR] Level %d: %d -> %d bytes", level, len(data), out.Len())
	return out.Bytes(), nil
}

// CompressImage re-encodes a PNG or JPEG in its own format. JPEGs use
// quality (clamped to [1, 100]); PNGs use best compression. It returns the
// new bytes and their MIME type.
func CompressImage(data []byte, quality int) ([]byte, string, error) {
	mt := mimetype.Detect(data)
	var format string
	switch {
	case mt.Is("image/jpeg"):
		format = "image/jpeg"
	case mt.Is("image/png"):
		format = "image/png"
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if format == "image/jpeg" {
		q := min(max(quality, MinQuality), MaxQuality)
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: q})
	} else {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), format, nil
}
