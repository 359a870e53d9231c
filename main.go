package main

import (
	// standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	// third-party
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/pdftoolbox/pdftoolbox/internal/config"
	"github.com/pdftoolbox/pdftoolbox/internal/handlers"
	"github.com/pdftoolbox/pdftoolbox/internal/logging"
	"github.com/pdftoolbox/pdftoolbox/internal/storage"
	"github.com/pdftoolbox/pdftoolbox/internal/version"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(cfg.LogLevel)
	logging.SetJSON(cfg.LogJSON)
	gin.SetMode(cfg.GinMode)

	logging.Logf("[STARTUP] %s", version.String())

	// Working directory for scratch files, created if missing
	backend, err := storage.NewFilesystemBackend(cfg.UploadFolder)
	if err != nil {
		logging.Logger().Fatalf("[STARTUP] ERROR: cannot use upload folder %s: %v", cfg.UploadFolder, err)
	}

	if n, err := storage.SweepOrphans(context.Background(), backend); err != nil {
		logging.Logf("[WARNING] Could not clear stale scratch files: %v", err)
	} else if n > 0 {
		logging.Logf("[STARTUP] Removed %d stale scratch area(s)", n)
	}

	router := handlers.NewRouter(handlers.New(cfg, backend))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Logf("[STARTUP] Listening on %s, scratch in %s", addr, backend.BasePath())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Logger().Fatalf("[STARTUP] ERROR: server stopped: %v", err)
	}
}
