// Package handlers exposes the document operations over HTTP.
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdftoolbox/pdftoolbox/internal/config"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/storage"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeZip  = "application/zip"
	contentTypeText = "text/plain; charset=utf-8"
)

// Handler serves the document endpoints. Uploads and results pass through
// backend, one scratch area per request.
type Handler struct {
	cfg     config.Config
	backend storage.StorageBackend
}

// New returns a Handler for cfg backed by backend.
func New(cfg config.Config, backend storage.StorageBackend) *Handler {
	return &Handler{cfg: cfg, backend: backend}
}

// artifact is a single downloadable result.
type artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// form parses the multipart body. Non-multipart bodies yield a nil form so
// the caller reports missing files.
func (h *Handler) form(c *gin.Context) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err == nil {
		return form, nil
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), bodyExceeded(c):
		return nil, upload.ErrTooLarge
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return nil, nil
	default:
		return nil, invalid("Invalid multipart form: %v", err)
	}
}

// collect gathers the files under field, mapping upload failures onto the
// endpoint's messages.
func (h *Handler) collect(c *gin.Context, field string, kind upload.Kind, noneMessage string) ([]upload.File, error) {
	form, err := h.form(c)
	if err != nil {
		return nil, err
	}
	files, err := upload.Collect(form, field, kind, h.cfg.AllowedExtensions)
	if err != nil {
		var mismatch *upload.ContentMismatchError
		switch {
		case errors.Is(err, upload.ErrNoValidFiles):
			return nil, invalid("%s", noneMessage)
		case errors.As(err, &mismatch):
			return nil, invalid("%s", mismatch.Error())
		}
		return nil, err
	}
	return files, nil
}

// stage writes every upload into the request's scratch area and reads it
// back, so operations only ever see what was persisted.
func (h *Handler) stage(ctx context.Context, s *storage.Scratch, files []upload.File) ([][]byte, error) {
	staged := make([][]byte, 0, len(files))
	for _, f := range files {
		key, err := s.PutUpload(ctx, f.Name, f.Data)
		if err != nil {
			return nil, err
		}
		data, err := s.ReadAll(ctx, key)
		if err != nil {
			return nil, err
		}
		staged = append(staged, data)
	}
	return staged, nil
}

// send stages a into scratch and streams it to the client as an attachment.
func (h *Handler) send(c *gin.Context, s *storage.Scratch, a artifact) error {
	ctx := c.Request.Context()
	key, err := s.PutOutput(ctx, a.Name, a.Data)
	if err != nil {
		return err
	}
	logging.Debugf("[HANDLER] Sending %s (%d bytes)", a.Name, len(a.Data))
	return storage.StreamToResponse(ctx, c, h.backend, key, a.Name, a.ContentType)
}

// operation is the body of one endpoint: it reads its inputs from the
// request and returns the artifact to send.
type operation func(c *gin.Context, s *storage.Scratch) (artifact, error)

// run gives op a fresh scratch area, sends its artifact and always cleans
// up afterwards.
func (h *Handler) run(op operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := storage.NewScratch(h.backend)
		defer s.Cleanup(context.WithoutCancel(c.Request.Context()))

		a, err := op(c, s)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if err := h.send(c, s, a); err != nil {
			if c.Writer.Written() {
				logging.Logf("[ERROR] Response for %s aborted: %v", a.Name, err)
				c.Abort()
				return
			}
			h.respondError(c, err)
		}
	}
}
