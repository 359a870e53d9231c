package handlers

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(), gin.Recovery())
	router.MaxMultipartMemory = h.cfg.MaxUploadBytes

	router.GET("/healthz", Healthz)
	router.GET("/api/version", Version)
	router.GET("/api/config", h.Config)

	docs := router.Group("/")
	docs.Use(BodyLimit(h.cfg.MaxUploadBytes))
	docs.POST("/convert-image", h.run(h.ConvertImage))
	docs.POST("/compress-pdf", h.run(h.CompressPDF))
	docs.POST("/convert-pdf-to-image", h.run(h.ConvertPDFToImage))
	docs.POST("/split-pdf", h.run(h.SplitPDF))
	docs.POST("/merge-pdf", h.run(h.MergePDF))
	docs.POST("/convert-pdf-to-text", h.run(h.ConvertPDFToText))
	docs.POST("/compress-image", h.run(h.CompressImage))
	docs.POST("/rearrange-pdf", h.run(h.RearrangePDF))

	router.NoRoute(NotFound)
	return router
}
