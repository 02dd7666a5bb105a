package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_PATH", "MEDIA_ROOT", "PHOTOS_SUBDIR", "PREVIEWS_SUBDIR",
		"PREVIEW_MAX_SIZE", "HIDPI_PREVIEW_MAX_SIZE", "THUMBNAIL_SIZE",
		"HIDPI_THUMBNAIL_SIZE", "PREVIEW_QUALITY", "THUMBNAIL_QUALITY",
		"SHUTTER_DECIMAL_THRESHOLD", "PIPELINE_QUEUE_SIZE", "NUM_PIPELINE_WORKERS",
		"GEOCODING_API_KEY", "GEOCODING_LANGUAGE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.PreviewMaxSize != 1327 || cfg.HidpiPreviewMaxSize != 2340 {
		t.Errorf("preview sizes = %d/%d, want 1327/2340", cfg.PreviewMaxSize, cfg.HidpiPreviewMaxSize)
	}
	if cfg.ThumbnailSize != 330 || cfg.HidpiThumbnailSize != 600 {
		t.Errorf("thumbnail sizes = %d/%d, want 330/600", cfg.ThumbnailSize, cfg.HidpiThumbnailSize)
	}
	if cfg.PreviewQuality != 90 || cfg.ThumbnailQuality != 80 {
		t.Errorf("qualities = %d/%d, want 90/80", cfg.PreviewQuality, cfg.ThumbnailQuality)
	}
	if cfg.ShutterDecimalThreshold != 0.3 {
		t.Errorf("shutter threshold = %g, want 0.3", cfg.ShutterDecimalThreshold)
	}
	if cfg.GeocodingLanguage != "en" {
		t.Errorf("geocoding language = %q, want en", cfg.GeocodingLanguage)
	}
	if !filepath.IsAbs(cfg.MediaRootPath) {
		t.Errorf("media root %q is not absolute", cfg.MediaRootPath)
	}
	if filepath.Base(cfg.PhotosPath) != "photos" || filepath.Base(cfg.PreviewsPath) != "previews" {
		t.Errorf("subdirs = %q / %q", cfg.PhotosPath, cfg.PreviewsPath)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MEDIA_ROOT", root)
	t.Setenv("PHOTOS_SUBDIR", "originals")
	t.Setenv("THUMBNAIL_SIZE", "380")
	t.Setenv("SHUTTER_DECIMAL_THRESHOLD", "0.5")
	t.Setenv("GEOCODING_API_KEY", "key123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MediaRootPath != root {
		t.Errorf("media root = %q, want %q", cfg.MediaRootPath, root)
	}
	if cfg.PhotosPath != filepath.Join(root, "originals") {
		t.Errorf("photos path = %q", cfg.PhotosPath)
	}
	if cfg.ThumbnailSize != 380 {
		t.Errorf("thumbnail size = %d, want 380", cfg.ThumbnailSize)
	}
	if cfg.ShutterDecimalThreshold != 0.5 {
		t.Errorf("shutter threshold = %g, want 0.5", cfg.ShutterDecimalThreshold)
	}
	if cfg.GeocodingAPIKey != "key123" {
		t.Errorf("api key = %q", cfg.GeocodingAPIKey)
	}
}

func TestInvalidNumericEnvFallsBack(t *testing.T) {
	t.Setenv("THUMBNAIL_SIZE", "not-a-number")
	t.Setenv("PREVIEW_MAX_SIZE", "-5")
	t.Setenv("SHUTTER_DECIMAL_THRESHOLD", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ThumbnailSize != 330 {
		t.Errorf("thumbnail size = %d, want default 330", cfg.ThumbnailSize)
	}
	if cfg.PreviewMaxSize != 1327 {
		t.Errorf("preview size = %d, want default 1327", cfg.PreviewMaxSize)
	}
	if cfg.ShutterDecimalThreshold != 0.3 {
		t.Errorf("shutter threshold = %g, want default 0.3", cfg.ShutterDecimalThreshold)
	}
}
