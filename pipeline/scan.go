package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"

	"github.com/photogallerist/gallerybackend/media"
)

// ScanResult summarizes a directory scan for new photos.
type ScanResult struct {
	AlbumID   uint     `json:"album_id"`
	NewPhotos int      `json:"new_photos"`
	Errors    []string `json:"errors,omitempty"`
}

// ScanAlbum lists image files in the album's storage directory and
// registers every previously-unseen file as a ready=false photo titled
// from its filename. Errors registering an individual file are collected
// and do not stop the scan.
func (p *Pipeline) ScanAlbum(albumID uint) (ScanResult, error) {
	album, err := p.albums.GetByID(albumID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("pipeline: failed to load album %d: %w", albumID, err)
	}

	dirPath, err := p.store.EnsureAlbumDir(media.AssetTypeOriginal, album.Slug)
	if err != nil {
		return ScanResult{}, fmt.Errorf("pipeline: failed to access album directory for %s: %w", album.Slug, err)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return ScanResult{}, fmt.Errorf("pipeline: failed to read album directory %s: %w", dirPath, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !media.IsSupportedImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	natsort.Sort(names)

	existingPaths, err := p.photos.ListSourcePathsByAlbumID(albumID)
	if err != nil {
		return ScanResult{}, err
	}
	existing := make(map[string]bool, len(existingPaths))
	for _, path := range existingPaths {
		existing[path] = true
	}

	result := ScanResult{AlbumID: albumID}
	for _, name := range names {
		relPath, err := p.store.Rel(filepath.Join(dirPath, name))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to add photo %s: %v", name, err))
			continue
		}
		if existing[relPath] {
			continue
		}

		title := strings.TrimSuffix(name, filepath.Ext(name))
		if _, err := p.newPhotoRecord(albumID, title, relPath); err != nil {
			log.Printf("pipeline: Failed to add photo %s: %v", name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to add photo %s: %v", name, err))
			continue
		}
		result.NewPhotos++
	}

	log.Printf("pipeline: Scanned album %d: %d new photo(s), %d error(s)", albumID, result.NewPhotos, len(result.Errors))
	return result, nil
}
