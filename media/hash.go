package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashChunkSize = 4096

// HashFile computes the SHA-256 digest of a file's bytes, reading in
// bounded chunks so large originals are never held in memory at once.
// The digest is used for change detection, not security.
func HashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("hash: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, file, buf); err != nil {
		return "", fmt.Errorf("hash: failed to read file %s: %w", filePath, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
