package upload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allowed = []string{"pdf", "png", "jpg", "jpeg"}

type part struct {
	field, name string
	data        []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func parseForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		w, err := writer.CreateFormFile(p.field, p.name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(p.data)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"doc.pdf", true},
		{"DOC.PDF", true},
		{"photo.JpEg", true},
		{"archive.tar.png", true},
		{"notes.txt", false},
		{"pdf", false},
		{"", false},
		{"trailing.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedFile(tt.name, allowed); got != tt.want {
				t.Errorf("AllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestExceedsLimit(t *testing.T) {
	limit := int64(16 << 20)
	assert.False(t, ExceedsLimit(limit, limit))
	assert.True(t, ExceedsLimit(limit+1, limit))
	assert.False(t, ExceedsLimit(-1, limit))
	assert.False(t, ExceedsLimit(limit+1, 0))
}

func TestCollectFiltersDisallowedExtensions(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%%EOF\n")
	form := parseForm(t,
		part{"pdfs[]", "a.pdf", pdf},
		part{"pdfs[]", "notes.txt", []byte("hello")},
		part{"pdfs[]", "b.PDF", pdf},
	)

	files, err := Collect(form, "pdfs[]", KindPDF, allowed)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, "b.PDF", files[1].Name)
	assert.Equal(t, "application/pdf", files[0].DetectedType)
	assert.Equal(t, pdf, files[0].Data)
}

func TestCollectNoValidFiles(t *testing.T) {
	form := parseForm(t, part{"files[]", "notes.txt", []byte("hello")})

	_, err := Collect(form, "files[]", KindImage, allowed)
	assert.True(t, errors.Is(err, ErrNoValidFiles))

	_, err = Collect(form, "missing", KindImage, allowed)
	assert.True(t, errors.Is(err, ErrNoValidFiles))

	_, err = Collect(nil, "files[]", KindImage, allowed)
	assert.True(t, errors.Is(err, ErrNoValidFiles))
}

func TestCollectRejectsMismatchedContent(t *testing.T) {
	form := parseForm(t, part{"pdf", "fake.pdf", pngBytes(t)})

	_, err := CollectOne(form, "pdf", KindPDF, allowed)
	var mismatch *ContentMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "fake.pdf", mismatch.Filename)
	assert.Equal(t, "image/png", mismatch.Detected)
	assert.Contains(t, err.Error(), "fake.pdf")
}

func TestCollectOneTakesFirst(t *testing.T) {
	form := parseForm(t,
		part{"images[]", "one.png", pngBytes(t)},
		part{"images[]", "two.png", pngBytes(t)},
	)
	f, err := CollectOne(form, "images[]", KindImage, allowed)
	require.NoError(t, err)
	assert.Equal(t, "one.png", f.Name)
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("application/pdf", KindPDF))
	assert.True(t, Matches("image/jpeg", KindImage))
	assert.True(t, Matches("image/png", KindImage))
	assert.False(t, Matches("image/gif", KindImage))
	assert.False(t, Matches("text/plain; charset=utf-8", KindPDF))
}
