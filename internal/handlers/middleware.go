package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
	"github.com/sirupsen/logrus"
)

const (
	requestIDKey = "requestID"
	bodyKey      = "limitedBody"
)

// limitedBody remembers whether the size cap was hit, since multipart
// parsing does not always pass the MaxBytesError through.
type limitedBody struct {
	io.ReadCloser
	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		b.exceeded = true
	}
	return n, err
}

// bodyExceeded reports whether the request body ran past BodyLimit.
func bodyExceeded(c *gin.Context) bool {
	v, ok := c.Get(bodyKey)
	if !ok {
		return false
	}
	b, ok := v.(*limitedBody)
	return ok && b.exceeded
}

// BodyLimit rejects requests that declare more than limit bytes and caps
// the rest so undeclared bodies cannot exceed it either.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if upload.ExceedsLimit(c.Request.ContentLength, limit) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": tooLargeMessage(limit)})
			return
		}
		if c.Request.Body != nil {
			body := &limitedBody{ReadCloser: http.MaxBytesReader(c.Writer, c.Request.Body, limit)}
			c.Request.Body = body
			c.Set(bodyKey, body)
		}
		c.Next()
	}
}

// RequestLogger logs one line per request and tags the response with an
// X-Request-ID, reusing the caller's if present.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)

		c.Next()

		status := c.Writer.Status()
		entry := logging.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
