package media

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// ExifInfo is the normalized result of metadata extraction for one photo.
// HasExifData is true only when at least one camera-parameter field is
// set; an image carrying only a GPS block is treated as having no EXIF
// data for display purposes even though its location fields are populated.
type ExifInfo struct {
	HasExifData bool
	HasLocation bool

	TakenAt      *time.Time
	Make         *string
	Model        *string
	ISO          *int
	ShutterSpeed *string
	Aperture     *float64
	FocalLength  *float64
	Lens         *string

	Latitude  *float64 // signed decimal degrees
	Longitude *float64 // signed decimal degrees
	Altitude  *int     // meters
}

// Extractor parses embedded EXIF blocks into ExifInfo records.
type Extractor struct {
	// exposure ratios at or above this threshold are formatted as decimal
	// seconds ("0.5") instead of a fraction ("1/125")
	ShutterDecimalThreshold float64
}

func NewExtractor(shutterDecimalThreshold float64) *Extractor {
	if shutterDecimalThreshold <= 0 {
		shutterDecimalThreshold = 0.3
	}
	return &Extractor{ShutterDecimalThreshold: shutterDecimalThreshold}
}

// Extract opens the image at filePath and reads its EXIF block. A missing
// or undecodable block is not an error: the result is (nil, nil). Within a
// block, each tag is extracted independently and failures leave the
// corresponding field nil; an unexpected parser panic yields whatever was
// parsed up to that point.
func (e *Extractor) Extract(filePath string) (*ExifInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("exif: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	exifData, err := exif.Decode(file)
	if err != nil {
		// file simply lacks EXIF data
		log.Printf("exif: No EXIF data found for %s: %v", filePath, err)
		return nil, nil
	}

	info := &ExifInfo{}
	e.parseTags(exifData, info, filePath)
	Finalize(info)
	return info, nil
}

// parseTags fills info tag by tag. goexif can panic on malformed tag data,
// so parsing is isolated here and a panic only loses the remaining tags.
func (e *Extractor) parseTags(exifData *exif.Exif, info *ExifInfo, filePath string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("exif: Recovered from EXIF parse failure for %s: %v", filePath, r)
		}
	}()

	info.Make = titleCased(getString(exifData, exif.Make))
	info.Model = getString(exifData, exif.Model)
	info.ISO = getInt(exifData, exif.ISOSpeedRatings)
	info.ShutterSpeed = e.getShutterSpeed(exifData)
	info.Aperture = getRationalRounded(exifData, exif.FNumber, 1)
	info.FocalLength = getRationalRounded(exifData, exif.FocalLength, 2)
	info.Lens = getString(exifData, exif.LensModel)
	info.TakenAt = getTakenAt(exifData)
	parseLocation(exifData, info)
}

// Finalize computes the derived flags and drops unpaired coordinates.
// Exported so partially built records (e.g. in tests)
// go through the same rules as file extraction.
func Finalize(info *ExifInfo) {
	// latitude and longitude are both present or both absent
	if (info.Latitude == nil) != (info.Longitude == nil) {
		info.Latitude = nil
		info.Longitude = nil
	}

	info.HasExifData = info.TakenAt != nil ||
		info.Make != nil ||
		info.Model != nil ||
		info.ISO != nil ||
		info.ShutterSpeed != nil ||
		info.Aperture != nil ||
		info.FocalLength != nil ||
		info.Lens != nil

	// a (0,0) reading is a device "no fix" sentinel, not a real location
	info.HasLocation = info.Latitude != nil && info.Longitude != nil &&
		!(*info.Latitude == 0 && *info.Longitude == 0)
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val, err := tag.StringVal()
	if err != nil {
		return nil
	}
	val = strings.TrimSpace(strings.TrimRight(val, "\x00"))
	if val == "" {
		return nil
	}
	return &val
}

// helper to safely get and convert an integer tag (like ISO)
func getInt(exifData *exif.Exif, tagName exif.FieldName) *int {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// ISO might be a slice, get the first value
	val, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &val
}

// helper to safely get and convert a rational tag (like FNumber)
func getRationalRounded(exifData *exif.Exif, tagName exif.FieldName, places int) *float64 {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		// sometimes stored as Int instead
		valInt, errInt := tag.Int(0)
		if errInt == nil {
			fVal := float64(valInt)
			return &fVal
		}
		return nil
	}
	val := roundTo(float64(num)/float64(den), places)
	return &val
}

func (e *Extractor) getShutterSpeed(exifData *exif.Exif) *string {
	tag, err := exifData.Get(exif.ExposureTime)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return nil
	}
	return FormatShutterSpeed(num, den, e.ShutterDecimalThreshold)
}

// FormatShutterSpeed renders an exposure-time rational for display. Times
// under one second format as a "1/N" fraction unless the ratio reaches the
// threshold, where a decimal seconds value reads more naturally ("0.5").
// Times of a second or more are plain numbers.
func FormatShutterSpeed(num, den int64, threshold float64) *string {
	if num <= 0 || den <= 0 {
		return nil
	}
	if num < den {
		ratio := float64(num) / float64(den)
		if ratio >= threshold {
			s := strconv.FormatFloat(roundTo(ratio, 1), 'g', -1, 64)
			return &s
		}
		s := fmt.Sprintf("1/%d", int64(math.Round(float64(den)/float64(num))))
		return &s
	}
	if num%den == 0 {
		s := strconv.FormatInt(num/den, 10)
		return &s
	}
	s := strconv.FormatFloat(roundTo(float64(num)/float64(den), 1), 'g', -1, 64)
	return &s
}

// getTakenAt reads the generic DateTime tag first and lets the more
// specific DateTimeOriginal overwrite it when both are present.
func getTakenAt(exifData *exif.Exif) *time.Time {
	var taken *time.Time
	for _, tagName := range []exif.FieldName{exif.DateTime, exif.DateTimeOriginal} {
		if s := getString(exifData, tagName); s != nil {
			if t, err := time.Parse(exifTimeLayout, *s); err == nil {
				parsed := t
				taken = &parsed
			}
		}
	}
	return taken
}

func parseLocation(exifData *exif.Exif, info *ExifInfo) {
	latTag, errLat := exifData.Get(exif.GPSLatitude)
	latRef := getString(exifData, exif.GPSLatitudeRef)
	lonTag, errLon := exifData.Get(exif.GPSLongitude)
	lonRef := getString(exifData, exif.GPSLongitudeRef)
	if errLat != nil || errLon != nil || latRef == nil || lonRef == nil {
		return
	}

	lat, err := degreesFromTag(latTag)
	if err != nil {
		return
	}
	lon, err := degreesFromTag(lonTag)
	if err != nil {
		return
	}

	lat = ApplySignedRef(lat, *latRef, "N")
	lon = ApplySignedRef(lon, *lonRef, "E")
	info.Latitude = &lat
	info.Longitude = &lon

	if altTag, err := exifData.Get(exif.GPSAltitude); err == nil && altTag != nil {
		if num, den, err := altTag.Rat2(0); err == nil && den != 0 {
			alt := int(math.Round(float64(num) / float64(den)))
			info.Altitude = &alt
		}
	}
}

type ratTag interface {
	Rat2(i int) (num, den int64, err error)
}

// degreesFromTag converts a degrees/minutes/seconds rational triple into
// decimal degrees.
func degreesFromTag(tag ratTag) (float64, error) {
	var parts [3]float64
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, fmt.Errorf("exif: invalid GPS rational at index %d: %w", i, err)
		}
		if den == 0 {
			return 0, fmt.Errorf("exif: zero denominator in GPS rational at index %d", i)
		}
		parts[i] = float64(num) / float64(den)
	}
	return parts[0] + parts[1]/60.0 + parts[2]/3600.0, nil
}

// ApplySignedRef negates a coordinate whose hemisphere reference differs
// from the positive one ("N" for latitude, "E" for longitude).
func ApplySignedRef(value float64, ref, positiveRef string) float64 {
	if strings.TrimSpace(ref) != positiveRef {
		return -value
	}
	return value
}

var titleCaser = cases.Title(language.Und)

// titleCased normalizes inconsistently cased vendor strings ("NIKON
// CORPORATION", "samsung") to title case.
func titleCased(s *string) *string {
	if s == nil {
		return nil
	}
	t := titleCaser.String(strings.ToLower(*s))
	return &t
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
