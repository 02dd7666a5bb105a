package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/photogallerist/gallerybackend/models"
)

// AlbumRepository handles database operations for Album entities
type AlbumRepository struct {
	DB *gorm.DB
}

// NewAlbumRepository creates a new instance of AlbumRepository
func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{DB: db}
}

// Create creates a new album record in the database
func (r *AlbumRepository) Create(album *models.Album) error {
	now := time.Now().Unix()
	if album.CreatedAt == 0 {
		album.CreatedAt = now
	}
	if album.UpdatedAt == 0 {
		album.UpdatedAt = now
	}

	err := r.DB.Create(album).Error
	if err != nil {
		return fmt.Errorf("failed to create album %s: %w", album.Title, err)
	}
	return nil
}

// ListAll retrieves every album, ordered by title
func (r *AlbumRepository) ListAll() ([]models.Album, error) {
	var albums []models.Album
	err := r.DB.Order("title ASC").Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// ListPublic retrieves public albums only, ordered by title
func (r *AlbumRepository) ListPublic() ([]models.Album, error) {
	var albums []models.Album
	err := r.DB.Where("public = ?", true).Order("title ASC").Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list public albums: %w", err)
	}
	return albums, nil
}

// GetByID retrieves an album by its ID
func (r *AlbumRepository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.DB.First(&album, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by ID %d: %w", id, err)
	}
	return &album, nil
}

// GetBySlug retrieves an album by its directory slug
func (r *AlbumRepository) GetBySlug(slug string) (*models.Album, error) {
	var album models.Album
	err := r.DB.Where("slug = ?", slug).First(&album).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by slug %s: %w", slug, err)
	}
	return &album, nil
}

// Update persists edits to an album's title, description, visibility and
// cover photo. The slug is deliberately not updatable: it names the
// album's media directories on disk.
func (r *AlbumRepository) Update(album *models.Album) error {
	updates := map[string]interface{}{
		"title":      album.Title,
		"public":     album.Public,
		"updated_at": time.Now().Unix(),
	}
	if album.Description != nil {
		updates["description"] = *album.Description
	} else {
		updates["description"] = gorm.Expr("NULL")
	}
	if album.CoverPhotoID != nil {
		updates["cover_photo_id"] = *album.CoverPhotoID
	} else {
		updates["cover_photo_id"] = gorm.Expr("NULL")
	}

	result := r.DB.Model(&models.Album{}).Where("id = ?", album.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update album ID %d: %w", album.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an album by its ID
// this will perform a soft delete because models.Album has gorm.DeletedAt
func (r *AlbumRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Album{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete album ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
