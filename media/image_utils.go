package media

import (
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
)

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
}

// IsSupportedImage checks if the filename has an extension on the upload
// allow-list (case-insensitive).
func IsSupportedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}
