package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/models"
)

// PhotoRepository handles database operations for Photo entities
type PhotoRepository struct {
	DB *gorm.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// Create creates a new photo record in the database
func (r *PhotoRepository) Create(photo *models.Photo) error {
	now := time.Now().Unix()
	if photo.CreatedAt == 0 {
		photo.CreatedAt = now
	}
	if photo.UpdatedAt == 0 {
		photo.UpdatedAt = now
	}

	err := r.DB.Create(photo).Error
	if err != nil {
		return fmt.Errorf("failed to create photo %s: %w", photo.Title, err)
	}
	return nil
}

// GetByID retrieves a photo by its ID
func (r *PhotoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Exif").First(&photo, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by ID %d: %w", id, err)
	}
	return &photo, nil
}

// GetBySlug retrieves a photo by its slug
func (r *PhotoRepository) GetBySlug(slug string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Exif").Where("slug = ?", slug).First(&photo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by slug %s: %w", slug, err)
	}
	return &photo, nil
}

// ListByAlbumID retrieves every photo in an album, ordered by title
func (r *PhotoRepository) ListByAlbumID(albumID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("album_id = ?", albumID).Order("title ASC").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for album %d: %w", albumID, err)
	}
	return photos, nil
}

// ListSourcePathsByAlbumID retrieves the registered source paths in an album
func (r *PhotoRepository) ListSourcePathsByAlbumID(albumID uint) ([]string, error) {
	var paths []string
	err := r.DB.Model(&models.Photo{}).Where("album_id = ?", albumID).Pluck("source_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list source paths for album %d: %w", albumID, err)
	}
	return paths, nil
}

// ListNotReady retrieves photos with pending or failed processing
func (r *PhotoRepository) ListNotReady() ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("ready = ?", false).Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list not-ready photos: %w", err)
	}
	return photos, nil
}

// SlugExists reports whether any photo already uses the given slug
func (r *PhotoRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Photo{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check photo slug %s: %w", slug, err)
	}
	return count > 0, nil
}

// SetPipelineResult records a successful pipeline run for a photo
func (r *PhotoRepository) SetPipelineResult(photoID uint, fileHash string, derived media.DerivedSet) error {
	updates := map[string]interface{}{
		"file_hash":            fileHash,
		"ready":                true,
		"processing_error":     gorm.Expr("NULL"),
		"preview_path":         derived.PreviewPath,
		"hidpi_preview_path":   derived.HidpiPreviewPath,
		"thumbnail_path":       derived.ThumbnailPath,
		"hidpi_thumbnail_path": derived.HidpiThumbnailPath,
		"updated_at":           time.Now().Unix(),
	}

	result := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set pipeline result for photo ID %d: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkNotReady flags a photo as pending (taskErr == nil) or failed
func (r *PhotoRepository) MarkNotReady(photoID uint, taskErr error) error {
	var errStr *string
	if taskErr != nil {
		s := taskErr.Error()
		errStr = &s
	}

	updates := map[string]interface{}{
		"ready":      false,
		"updated_at": time.Now().Unix(),
	}
	if errStr != nil {
		updates["processing_error"] = *errStr
	} else {
		updates["processing_error"] = gorm.Expr("NULL")
	}

	result := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark photo ID %d not ready: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateDetails edits a photo's user-facing fields. A nil pointer leaves
// the field unchanged; an empty description clears the column. The slug
// and source path stay fixed.
func (r *PhotoRepository) UpdateDetails(photoID uint, title, description *string) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().Unix(),
	}
	if title != nil {
		updates["title"] = *title
	}
	if description != nil {
		if *description == "" {
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *description
		}
	}

	result := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update photo ID %d: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a photo by its ID
// this will perform a soft delete because models.Photo has gorm.DeletedAt
func (r *PhotoRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Photo{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete photo ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
