package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdftoolbox/pdftoolbox/internal/version"
)

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Version returns build information.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// Config returns the limits and defaults clients need to build requests.
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"maxUploadBytes":          h.cfg.MaxUploadBytes,
		"allowedExtensions":       h.cfg.AllowedExtensions,
		"renderDpi":               h.cfg.RenderDPI,
		"imageQuality":            h.cfg.ImageQuality,
		"defaultCompressionLevel": h.cfg.DefaultCompressionLevel,
	})
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
}
