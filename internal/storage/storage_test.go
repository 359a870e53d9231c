package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *FilesystemBackend {
	t.Helper()
	fs, err := NewFilesystemBackend(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return fs
}

func TestFilesystemBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newBackend(t)

	require.NoError(t, fs.Put(ctx, "requests/a/in/doc.pdf", strings.NewReader("hello")))

	ok, err := fs.Exists(ctx, "requests/a/in/doc.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := fs.Get(ctx, "requests/a/in/doc.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(data))

	info, err := fs.Stat(ctx, "requests/a/in/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	// no leftover partial file
	_, err = os.Stat(filepath.Join(fs.BasePath(), "requests", "a", "in", "doc.pdf.part"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fs.Delete(ctx, "requests/a/in/doc.pdf"))
	require.NoError(t, fs.Delete(ctx, "requests/a/in/doc.pdf"))
	_, err = fs.Get(ctx, "requests/a/in/doc.pdf")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFilesystemBackendRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	fs := newBackend(t)

	for _, key := range []string{"../escape", "/etc/passwd", "a//b", ""} {
		assert.Error(t, fs.Put(ctx, key, strings.NewReader("x")), "key %q", key)
	}
}

func TestListAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	fs := newBackend(t)

	require.NoError(t, fs.Put(ctx, "requests/a/in/2.pdf", strings.NewReader("2")))
	require.NoError(t, fs.Put(ctx, "requests/a/in/1.pdf", strings.NewReader("1")))
	require.NoError(t, fs.Put(ctx, "requests/b/in/1.pdf", strings.NewReader("1")))

	keys, err := fs.List(ctx, "requests/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"requests/a/in/1.pdf", "requests/a/in/2.pdf"}, keys)

	require.NoError(t, fs.DeletePrefix(ctx, "requests/a/"))
	keys, err = fs.List(ctx, "requests/a/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = fs.List(ctx, "requests/b/")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestScratchIsolationAndCleanup(t *testing.T) {
	ctx := context.Background()
	fs := newBackend(t)

	first := NewScratch(fs)
	second := NewScratch(fs)
	require.NotEqual(t, first.ID(), second.ID())

	k1, err := first.PutUpload(ctx, "../report.pdf", []byte("one"))
	require.NoError(t, err)
	k2, err := second.PutUpload(ctx, "report.pdf", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2, "same filename in two requests must not collide")
	assert.True(t, strings.HasSuffix(k1, "/in/report.pdf"))

	// last write wins within one request
	_, err = first.PutUpload(ctx, "report.pdf", []byte("three"))
	require.NoError(t, err)
	data, err := first.ReadAll(ctx, k1)
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))

	require.NoError(t, first.Cleanup(ctx))
	keys, err := first.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	data, err = second.ReadAll(ctx, k2)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestParseRequestIDFromKey(t *testing.T) {
	id := uuid.New()
	got, err := ParseRequestIDFromKey(UploadKey(id, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseRequestIDFromKey("backups/x")
	assert.Error(t, err)
	_, err = ParseRequestIDFromKey("requests/not-a-uuid/in/a.pdf")
	assert.Error(t, err)
}

func TestStreamToResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	fs := newBackend(t)
	s := NewScratch(fs)

	key, err := s.PutOutput(ctx, "merged.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	require.NoError(t, StreamToResponse(ctx, c, fs, key, "merged.pdf", "application/pdf"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=merged.pdf", w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.Equal([]byte("%PDF-1.7"), w.Body.Bytes()))
}

func TestSweepOrphans(t *testing.T) {
	ctx := context.Background()
	fs := newBackend(t)

	a, b := NewScratch(fs), NewScratch(fs)
	_, err := a.PutUpload(ctx, "one.pdf", []byte("1"))
	require.NoError(t, err)
	_, err = a.PutOutput(ctx, "merged.pdf", []byte("2"))
	require.NoError(t, err)
	_, err = b.PutUpload(ctx, "two.pdf", []byte("3"))
	require.NoError(t, err)

	n, err := SweepOrphans(ctx, fs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := fs.List(ctx, "requests/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
