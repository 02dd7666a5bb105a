package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultPhotosSubDir   = "photos"
	DefaultPreviewsSubDir = "previews"
)

const (
	defaultPreviewMaxSize      = 1327
	defaultHidpiPreviewMaxSize = 2340
	defaultThumbnailSize       = 330
	defaultHidpiThumbnailSize  = 600
	defaultPreviewQuality      = 90
	defaultThumbnailQuality    = 80

	defaultShutterDecimalThreshold = 0.3

	defaultPipelineQueueSize  = 200
	defaultNumPipelineWorkers = 4
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaRootPath string // primary root for originals and generated renditions
	PhotosPath    string // full-calculated path for original photos
	PreviewsPath  string // full-calculated path for derived media

	// derived media generation settings
	PreviewMaxSize      int // previews are only generated above this long edge
	HidpiPreviewMaxSize int
	ThumbnailSize       int // square, always generated
	HidpiThumbnailSize  int
	PreviewQuality      int
	ThumbnailQuality    int

	// exposure ratios at or above this threshold are formatted as decimal
	// seconds instead of a 1/N fraction
	ShutterDecimalThreshold float64

	// worker settings
	PipelineQueueSize  int
	NumPipelineWorkers int

	// geocoding lookup settings
	GeocodingAPIKey   string
	GeocodingLanguage string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "gallery.db")

	mediaRoot := getEnvOrDefault("MEDIA_ROOT", filepath.Join(".", "media"))
	absMediaRoot, err := filepath.Abs(mediaRoot)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media root '%s': %w", mediaRoot, err)
	}

	photosSubDir := getEnvOrDefault("PHOTOS_SUBDIR", DefaultPhotosSubDir)
	absPhotosPath := filepath.Join(absMediaRoot, photosSubDir)

	previewsSubDir := getEnvOrDefault("PREVIEWS_SUBDIR", DefaultPreviewsSubDir)
	absPreviewsPath := filepath.Join(absMediaRoot, previewsSubDir)

	cfg := Config{
		DatabasePath:            dbPath,
		MediaRootPath:           absMediaRoot,
		PhotosPath:              absPhotosPath,
		PreviewsPath:            absPreviewsPath,
		PreviewMaxSize:          getEnvIntOrDefault("PREVIEW_MAX_SIZE", defaultPreviewMaxSize),
		HidpiPreviewMaxSize:     getEnvIntOrDefault("HIDPI_PREVIEW_MAX_SIZE", defaultHidpiPreviewMaxSize),
		ThumbnailSize:           getEnvIntOrDefault("THUMBNAIL_SIZE", defaultThumbnailSize),
		HidpiThumbnailSize:      getEnvIntOrDefault("HIDPI_THUMBNAIL_SIZE", defaultHidpiThumbnailSize),
		PreviewQuality:          getEnvIntOrDefault("PREVIEW_QUALITY", defaultPreviewQuality),
		ThumbnailQuality:        getEnvIntOrDefault("THUMBNAIL_QUALITY", defaultThumbnailQuality),
		ShutterDecimalThreshold: getEnvFloatOrDefault("SHUTTER_DECIMAL_THRESHOLD", defaultShutterDecimalThreshold),
		PipelineQueueSize:       getEnvIntOrDefault("PIPELINE_QUEUE_SIZE", defaultPipelineQueueSize),
		NumPipelineWorkers:      getEnvIntOrDefault("NUM_PIPELINE_WORKERS", defaultNumPipelineWorkers),
		GeocodingAPIKey:         os.Getenv("GEOCODING_API_KEY"),
		GeocodingLanguage:       getEnvOrDefault("GEOCODING_LANGUAGE", "en"),
	}

	return cfg, nil
}
