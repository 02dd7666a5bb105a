package models

// ExifMetadata holds extracted camera and location data for exactly one
// photo. A row exists only when the source image carried a parseable EXIF
// block; individual fields stay NULL when their tag was absent.
type ExifMetadata struct {
	PhotoID uint `gorm:"primaryKey" json:"photo_id"`

	TakenAt      *int64   `gorm:"index" json:"taken_at,omitempty"` // Unix timestamp
	Make         *string  `gorm:"" json:"make,omitempty"`
	Model        *string  `gorm:"" json:"model,omitempty"`
	ISO          *int     `gorm:"" json:"iso,omitempty"`
	ShutterSpeed *string  `gorm:"" json:"shutter_speed,omitempty"` // e.g. "1/2352" or "0.5"
	Aperture     *float64 `gorm:"" json:"aperture,omitempty"`      // F-number
	FocalLength  *float64 `gorm:"" json:"focal_length,omitempty"`  // mm
	Lens         *string  `gorm:"" json:"lens,omitempty"`

	HasLocation bool     `gorm:"not null;default:false" json:"has_location"`
	Latitude    *float64 `gorm:"" json:"latitude,omitempty"`  // signed decimal degrees
	Longitude   *float64 `gorm:"" json:"longitude,omitempty"` // signed decimal degrees
	Altitude    *int     `gorm:"" json:"altitude,omitempty"`  // meters

	// back-filled by the geocoding resolver
	Locality *string `gorm:"" json:"locality,omitempty"`
	Country  *string `gorm:"" json:"country,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (ExifMetadata) TableName() string {
	return "exif_metadata"
}
