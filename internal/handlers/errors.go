package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/upload"
)

// ValidationError is a client mistake: missing or disallowed files, or a
// bad parameter. It maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProcessingError wraps a failure inside a document or image library.
type ProcessingError struct {
	Action string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("Error %s: %v", e.Action, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func failed(action string, err error) error {
	return &ProcessingError{Action: action, Err: err}
}

func tooLargeMessage(limit int64) string {
	if limit >= 1<<20 {
		return fmt.Sprintf("File too large. Maximum upload size is %d MB.", limit>>20)
	}
	return fmt.Sprintf("File too large. Maximum upload size is %d bytes.", limit)
}

// respondError writes the JSON error body for err and aborts the chain.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": ve.Message})
	case errors.Is(err, upload.ErrTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": tooLargeMessage(h.cfg.MaxUploadBytes)})
	default:
		logging.Logf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
