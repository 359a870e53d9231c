package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the matching environment variable is unset.
const (
	DefaultPort             = "8000"
	DefaultUploadFolder     = "uploads"
	DefaultMaxUploadMB      = 16
	DefaultRenderDPI        = 72
	DefaultImageQuality     = 85
	DefaultCompressionLevel = 5
)

// DefaultAllowedExtensions is the set of upload extensions accepted by every
// endpoint.
var DefaultAllowedExtensions = []string{"pdf", "png", "jpg", "jpeg"}

// Config carries everything the request layer needs. It is built once at
// startup and handed to handlers.New, so tests can point it at a temp dir.
type Config struct {
	Port                    string   `validate:"required,numeric"`
	UploadFolder            string   `validate:"required"`
	MaxUploadBytes          int64    `validate:"gt=0"`
	AllowedExtensions       []string `validate:"required,min=1,dive,required"`
	RenderDPI               float64  `validate:"gt=0,lte=600"`
	ImageQuality            int      `validate:"min=1,max=100"`
	DefaultCompressionLevel int      `validate:"min=0,max=9"`
	GinMode                 string   `validate:"omitempty,oneof=debug release test"`
	LogLevel                string
	LogJSON                 bool
}

// Default returns a Config populated with built-in defaults only.
func Default() Config {
	return Config{
		Port:                    DefaultPort,
		UploadFolder:            DefaultUploadFolder,
		MaxUploadBytes:          DefaultMaxUploadMB << 20,
		AllowedExtensions:       append([]string(nil), DefaultAllowedExtensions...),
		RenderDPI:               DefaultRenderDPI,
		ImageQuality:            DefaultImageQuality,
		DefaultCompressionLevel: DefaultCompressionLevel,
		GinMode:                 "release",
		LogLevel:                "info",
	}
}

// Load builds a Config from the environment and validates it.
func Load() (Config, error) {
	cfg := Default()
	cfg.Port = Get("PORT", cfg.Port)
	cfg.UploadFolder = Get("UPLOAD_FOLDER", cfg.UploadFolder)
	cfg.MaxUploadBytes = int64(GetInt("MAX_UPLOAD_MB", DefaultMaxUploadMB)) << 20
	cfg.RenderDPI = GetFloat("RENDER_DPI", cfg.RenderDPI)
	cfg.ImageQuality = GetInt("IMAGE_QUALITY", cfg.ImageQuality)
	cfg.GinMode = Get("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = Get("LOG_LEVEL", cfg.LogLevel)
	cfg.LogJSON = GetBool("LOG_JSON", cfg.LogJSON)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and reports the first violation in
// terms of the environment variable that feeds it.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	return errors.New(validationErrorMessage(err))
}

var envNames = map[string]string{
	"Port":                    "PORT",
	"UploadFolder":            "UPLOAD_FOLDER",
	"MaxUploadBytes":          "MAX_UPLOAD_MB",
	"AllowedExtensions":       "allowed extensions",
	"RenderDPI":               "RENDER_DPI",
	"ImageQuality":            "IMAGE_QUALITY",
	"DefaultCompressionLevel": "default compression level",
	"GinMode":                 "GIN_MODE",
}

func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		name := envNames[ve.StructField()]
		if name == "" {
			name = ve.StructField()
		}
		switch ve.Tag() {
		case "required":
			return fmt.Sprintf("invalid configuration: %s is required", name)
		case "numeric":
			return fmt.Sprintf("invalid configuration: %s must be numeric, got %q", name, ve.Value())
		case "oneof":
			return fmt.Sprintf("invalid configuration: %s must be one of [%s], got %q", name, ve.Param(), ve.Value())
		default:
			return fmt.Sprintf("invalid configuration: %s fails %s=%s (got %v)", name, ve.Tag(), ve.Param(), ve.Value())
		}
	}
	return "invalid configuration: " + err.Error()
}
