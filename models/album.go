package models

import "gorm.io/gorm"

// Album represents an album of photos in the database using GORM.
// It corresponds to the 'albums' table.
type Album struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string         `gorm:"not null;unique" json:"title"`
	Slug         string         `gorm:"not null;unique" json:"slug"` // directory name under photos/ and previews/
	Description  *string        `gorm:"" json:"description,omitempty"`
	Public       bool           `gorm:"not null" json:"public"`
	CoverPhotoID *uint          `gorm:"" json:"cover_photo_id,omitempty"`
	CreatedAt    int64          `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt    int64          `gorm:"not null" json:"updated_at"` // Unix timestamp
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}
