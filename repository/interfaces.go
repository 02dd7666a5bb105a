package repository

import (
	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/models"
)

// AlbumRepositoryInterface defines the methods for album data operations
type AlbumRepositoryInterface interface {
	Create(album *models.Album) error
	ListAll() ([]models.Album, error)
	ListPublic() ([]models.Album, error)
	GetByID(id uint) (*models.Album, error)
	GetBySlug(slug string) (*models.Album, error)
	// Update persists edits to title, description, visibility and cover
	// photo; the directory slug is fixed at creation so media paths never
	// move
	Update(album *models.Album) error
	Delete(id uint) error
}

// PhotoRepositoryInterface defines the methods for photo data operations.
// The pipeline depends on this interface rather than the ORM so processing
// logic stays testable with an in-memory implementation.
type PhotoRepositoryInterface interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetBySlug(slug string) (*models.Photo, error)
	ListByAlbumID(albumID uint) ([]models.Photo, error)
	ListSourcePathsByAlbumID(albumID uint) ([]string, error)
	ListNotReady() ([]models.Photo, error)
	SlugExists(slug string) (bool, error)
	// SetPipelineResult records a successful pipeline run: new digest,
	// rendition paths, ready=true, processing error cleared
	SetPipelineResult(photoID uint, fileHash string, derived media.DerivedSet) error
	// MarkNotReady flags a photo as pending or failed; a non-nil taskErr is
	// stored so operators can distinguish "failed" from "still queued"
	MarkNotReady(photoID uint, taskErr error) error
	// UpdateDetails edits the user-facing fields; nil leaves a field
	// unchanged, an empty description clears it
	UpdateDetails(photoID uint, title, description *string) error
	Delete(id uint) error
}

// ExifRepositoryInterface defines the methods for EXIF metadata operations
type ExifRepositoryInterface interface {
	Upsert(meta *models.ExifMetadata) error
	GetByPhotoID(photoID uint) (*models.ExifMetadata, error)
	// ListLocatedByAlbumID returns the album's records carrying location data
	ListLocatedByAlbumID(albumID uint) ([]models.ExifMetadata, error)
	UpdateResolvedLocation(photoID uint, locality, country *string) error
	DeleteByPhotoID(photoID uint) error
}
