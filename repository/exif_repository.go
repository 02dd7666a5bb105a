package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/photogallerist/gallerybackend/models"
)

// ExifRepository handles database operations for ExifMetadata entities
type ExifRepository struct {
	DB *gorm.DB
}

// NewExifRepository creates a new instance of ExifRepository
func NewExifRepository(db *gorm.DB) *ExifRepository {
	return &ExifRepository{DB: db}
}

// Upsert inserts or fully replaces the metadata record for a photo.
// Re-derivation after a content change overwrites the previous extraction.
func (r *ExifRepository) Upsert(meta *models.ExifMetadata) error {
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "photo_id"}},
		UpdateAll: true,
	}).Create(meta).Error
	if err != nil {
		return fmt.Errorf("failed to upsert exif metadata for photo ID %d: %w", meta.PhotoID, err)
	}
	return nil
}

// GetByPhotoID retrieves the metadata record for a photo
func (r *ExifRepository) GetByPhotoID(photoID uint) (*models.ExifMetadata, error) {
	var meta models.ExifMetadata
	err := r.DB.Where("photo_id = ?", photoID).First(&meta).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get exif metadata for photo ID %d: %w", photoID, err)
	}
	return &meta, nil
}

// ListLocatedByAlbumID retrieves the album's metadata records that carry
// location data, for geocoding passes
func (r *ExifRepository) ListLocatedByAlbumID(albumID uint) ([]models.ExifMetadata, error) {
	var records []models.ExifMetadata
	err := r.DB.
		Joins("JOIN photos ON photos.id = exif_metadata.photo_id").
		Where("photos.album_id = ? AND exif_metadata.has_location = ?", albumID, true).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list located exif metadata for album %d: %w", albumID, err)
	}
	return records, nil
}

// UpdateResolvedLocation back-fills the geocoded locality and country
func (r *ExifRepository) UpdateResolvedLocation(photoID uint, locality, country *string) error {
	result := r.DB.Model(&models.ExifMetadata{}).Where("photo_id = ?", photoID).Updates(map[string]interface{}{
		"locality": locality,
		"country":  country,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update resolved location for photo ID %d: %w", photoID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByPhotoID removes the metadata record for a photo
func (r *ExifRepository) DeleteByPhotoID(photoID uint) error {
	err := r.DB.Where("photo_id = ?", photoID).Delete(&models.ExifMetadata{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete exif metadata for photo ID %d: %w", photoID, err)
	}
	return nil
}
