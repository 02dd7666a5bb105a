package models

import "gorm.io/gorm"

// Photo represents one uploaded image in the database using GORM.
// It corresponds to the 'photos' table.
//
// FileHash is a SHA-256 digest of the original file bytes; derived media
// and metadata are regenerated only when it changes. A photo with
// Ready=false has renditions pending (or failed, see ProcessingError) and
// must not be treated as displayable.
type Photo struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	AlbumID     uint    `gorm:"not null;index" json:"album_id"`
	Title       string  `gorm:"not null;unique" json:"title"`
	Slug        string  `gorm:"not null;unique" json:"slug"`
	Description *string `gorm:"" json:"description,omitempty"`
	SourcePath  string  `gorm:"not null;unique" json:"source_path"` // relative to MEDIA_ROOT
	FileHash    string  `gorm:"" json:"file_hash,omitempty"`        // SHA-256 hex
	Ready       bool    `gorm:"not null;default:false" json:"ready"`

	PreviewPath        *string `gorm:"" json:"preview_path,omitempty"`
	HidpiPreviewPath   *string `gorm:"" json:"hidpi_preview_path,omitempty"`
	ThumbnailPath      *string `gorm:"" json:"thumbnail_path,omitempty"`
	HidpiThumbnailPath *string `gorm:"" json:"hidpi_thumbnail_path,omitempty"`

	ProcessingError *string `gorm:"" json:"processing_error,omitempty"`

	CreatedAt int64          `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64          `gorm:"not null" json:"updated_at"` // Unix timestamp
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Exif *ExifMetadata `gorm:"foreignKey:PhotoID" json:"exif,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

// DerivedPaths returns the non-nil rendition paths, used when releasing
// disk state on photo deletion.
func (p *Photo) DerivedPaths() []string {
	var paths []string
	for _, ptr := range []*string{p.PreviewPath, p.HidpiPreviewPath, p.ThumbnailPath, p.HidpiThumbnailPath} {
		if ptr != nil && *ptr != "" {
			paths = append(paths, *ptr)
		}
	}
	return paths
}
