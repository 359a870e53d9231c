package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
)

// Scratch is the slice of the working directory owned by one request. It is
// created per request and removed with Cleanup once the response is sent.
type Scratch struct {
	backend StorageBackend
	id      uuid.UUID
}

// NewScratch allocates a fresh request token on backend.
func NewScratch(backend StorageBackend) *Scratch {
	return &Scratch{backend: backend, id: uuid.New()}
}

// ID is the per-request token that prefixes every scratch key.
func (s *Scratch) ID() uuid.UUID {
	return s.id
}

// PutUpload persists an upload under its sanitised name and returns the key.
func (s *Scratch) PutUpload(ctx context.Context, filename string, data []byte) (string, error) {
	key := UploadKey(s.id, filename)
	if err := s.backend.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store upload %s: %w", filename, err)
	}
	return key, nil
}

// PutOutput stages a response artifact and returns its key.
func (s *Scratch) PutOutput(ctx context.Context, filename string, data []byte) (string, error) {
	key := OutputKey(s.id, filename)
	if err := s.backend.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to stage output %s: %w", filename, err)
	}
	return key, nil
}

// ReadAll loads a stored object fully into memory.
func (s *Scratch) ReadAll(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Keys lists everything this request has written so far.
func (s *Scratch) Keys(ctx context.Context) ([]string, error) {
	return s.backend.List(ctx, RequestPrefix(s.id))
}

// Cleanup removes every object written under this request's prefix.
// Failures are logged and returned but never mask the response.
func (s *Scratch) Cleanup(ctx context.Context) error {
	if err := s.backend.DeletePrefix(ctx, RequestPrefix(s.id)); err != nil {
		logging.Logf("[WARNING] Failed to clean scratch area for request %s: %v", s.id, err)
		return err
	}
	logging.Debugf("[STORAGE] Cleaned scratch area for request %s", s.id)
	return nil
}

// StreamToResponse copies a stored object to the client as an attachment.
func StreamToResponse(ctx context.Context, c *gin.Context, backend StorageBackend, storageKey, filename, contentType string) error {
	info, err := backend.Stat(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	reader, err := backend.Get(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("failed to get artifact from storage: %w", err)
	}
	defer reader.Close()

	if filename != "" {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logging.Logf("[ERROR] Failed to stream artifact %s: %v", storageKey, err)
		return fmt.Errorf("failed to stream artifact: %w", err)
	}
	return nil
}

// SweepOrphans removes scratch areas left behind by a previous process.
// It must only run before the server accepts requests.
func SweepOrphans(ctx context.Context, backend StorageBackend) (int, error) {
	keys, err := backend.List(ctx, requestsRoot+"/")
	if err != nil {
		return 0, err
	}
	seen := make(map[uuid.UUID]bool)
	for _, key := range keys {
		id, err := ParseRequestIDFromKey(key)
		if err != nil {
			logging.Logf("[WARNING] Ignoring unexpected scratch key %s: %v", key, err)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := backend.DeletePrefix(ctx, RequestPrefix(id)); err != nil {
			return len(seen) - 1, err
		}
	}
	return len(seen), nil
}
