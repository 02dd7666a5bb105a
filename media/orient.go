package media

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// ReadOrientation returns the EXIF orientation tag (1..8) for the image at
// filePath. Missing or unreadable orientation metadata yields 1, the
// identity orientation; it must never fail the pipeline.
func ReadOrientation(filePath string) int {
	file, err := os.Open(filePath)
	if err != nil {
		return 1
	}
	defer file.Close()

	exifData, err := exif.Decode(file)
	if err != nil {
		return 1
	}
	tag, err := exifData.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// NormalizeOrientation applies the rotation/flip implied by the EXIF/TIFF
// orientation convention so the pixel buffer's "up" matches the scene's
// "up". Values outside 1..8 are treated as 1 (pass-through).
func NormalizeOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipH(imaging.Rotate180(img))
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
