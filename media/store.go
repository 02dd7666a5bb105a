package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Store defines the interface for saving, retrieving, and deleting media
// files. Originals and derived renditions live in per-album directories
// keyed by the album's directory slug, so concurrent processing of
// different albums never contends on the same directory.
type Store interface {
	// Save stores data from reader under the asset type's directory for
	// the given album. returns the path used, relative to the media root
	Save(assetType AssetType, albumSlug string, filename string, data io.Reader) (string, error)
	// Get retrieves a reader for a stored file
	Get(relativePath string) (io.ReadCloser, os.FileInfo, error)
	// Delete removes a stored file; missing files are not an error
	Delete(relativePath string) error
	// DeleteAlbumDirs removes an album's photo and preview directories
	DeleteAlbumDirs(albumSlug string) error
	// GetFullPath returns the absolute filesystem path for a relative path
	GetFullPath(relativePath string) (string, error)
	// Rel converts an absolute path inside the media root back to the
	// root-relative form stored on records
	Rel(fullPath string) (string, error)
	// EnsureAlbumDir makes sure an album's asset directory exists
	EnsureAlbumDir(assetType AssetType, albumSlug string) (string, error)
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath  string               // absolute path to MEDIA_ROOT
	subDirMap map[AssetType]string // maps AssetType to subdirectory name (e.g. "previews")
}

// NewLocalStorage creates a new local filesystem store rooted at basePath
func NewLocalStorage(basePath string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid media root path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root directory '%s': %w", absBasePath, err)
	}

	for assetType, subDir := range subDirs {
		fullPath := filepath.Join(absBasePath, subDir)
		if !strings.HasPrefix(filepath.Clean(fullPath), absBasePath) {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' for asset type '%s' resolves outside media root '%s'", subDir, assetType, absBasePath)
		}
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return &LocalStorage{
		basePath:  absBasePath,
		subDirMap: subDirs,
	}, nil
}

func (ls *LocalStorage) assetTypeDir(assetType AssetType) (string, error) {
	subDir, ok := ls.subDirMap[assetType]
	if !ok {
		return "", fmt.Errorf("asset type '%s' is not configured", assetType)
	}
	return filepath.Join(ls.basePath, subDir), nil
}

// EnsureAlbumDir creates the per-album directory for the asset type if it
// doesn't exist and returns its absolute path
func (ls *LocalStorage) EnsureAlbumDir(assetType AssetType, albumSlug string) (string, error) {
	baseDir, err := ls.assetTypeDir(assetType)
	if err != nil {
		return "", err
	}

	dirPath := filepath.Join(baseDir, albumSlug)
	if !strings.HasPrefix(filepath.Clean(dirPath), baseDir) {
		return "", fmt.Errorf("invalid album slug '%s'", albumSlug)
	}

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save writes data into the album's directory for the asset type and
// returns the relative path of the stored file
func (ls *LocalStorage) Save(assetType AssetType, albumSlug string, filename string, data io.Reader) (string, error) {
	targetDir, err := ls.EnsureAlbumDir(assetType, albumSlug)
	if err != nil {
		return "", err
	}

	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}

	fullSavePath := filepath.Join(targetDir, filename)

	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		return "", fmt.Errorf("internal error calculating relative path for '%s': %w", fullSavePath, err)
	}

	return filepath.ToSlash(relativePath), nil
}

func (ls *LocalStorage) Get(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found at '%s': %w", relativePath, err)
		}
		return nil, nil, fmt.Errorf("failed to open '%s': %w", relativePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat '%s': %w", relativePath, err)
	}

	return file, info, nil
}

// Delete removes a stored file
func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete '%s': %w", relativePath, err)
	}
	if err == nil {
		log.Printf("media.store: Deleted %s", fullPath)
	}
	return nil
}

// DeleteAlbumDirs removes the album's directories for every configured
// asset type, releasing all disk state owned by the album
func (ls *LocalStorage) DeleteAlbumDirs(albumSlug string) error {
	for assetType := range ls.subDirMap {
		baseDir, err := ls.assetTypeDir(assetType)
		if err != nil {
			return err
		}
		dirPath := filepath.Join(baseDir, albumSlug)
		if !strings.HasPrefix(filepath.Clean(dirPath), baseDir) {
			return fmt.Errorf("invalid album slug '%s'", albumSlug)
		}
		if err := os.RemoveAll(dirPath); err != nil {
			return fmt.Errorf("failed to delete album directory '%s': %w", dirPath, err)
		}
	}
	return nil
}

// Rel converts an absolute path inside the media root to its
// root-relative form
func (ls *LocalStorage) Rel(fullPath string) (string, error) {
	rel, err := filepath.Rel(ls.basePath, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path '%s' is outside the media root", fullPath)
	}
	return filepath.ToSlash(rel), nil
}

// GetFullPath calculates the absolute path and performs security check
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	cleanRelativePath := filepath.Clean(relativePath)

	fullPath := filepath.Join(ls.basePath, cleanRelativePath)

	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", relativePath, err)
	}

	if !strings.HasPrefix(absFullPath, ls.basePath) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}

	return absFullPath, nil
}
