package media

import (
	"fmt"
	"image"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// GeneratorOptions holds the rendition matrix parameters. Zero values are
// replaced by the reference defaults in NewGenerator.
type GeneratorOptions struct {
	PreviewMaxSize      int // preview generated only when a source edge exceeds this
	HidpiPreviewMaxSize int
	ThumbnailSize       int // square crop-to-fill, always generated
	HidpiThumbnailSize  int
	PreviewQuality      int
	ThumbnailQuality    int
}

// Generator produces the fixed set of renditions for a photo: two
// threshold-gated previews and two always-generated square thumbnails.
// It relies on a Store implementation for saving the results.
type Generator struct {
	store Store
	opts  GeneratorOptions
}

func NewGenerator(store Store, opts GeneratorOptions) *Generator {
	if opts.PreviewMaxSize <= 0 {
		opts.PreviewMaxSize = 1327
	}
	if opts.HidpiPreviewMaxSize <= 0 {
		opts.HidpiPreviewMaxSize = 2340
	}
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = 330
	}
	if opts.HidpiThumbnailSize <= 0 {
		opts.HidpiThumbnailSize = 600
	}
	if opts.PreviewQuality <= 0 {
		opts.PreviewQuality = 90
	}
	if opts.ThumbnailQuality <= 0 {
		opts.ThumbnailQuality = 80
	}
	return &Generator{store: store, opts: opts}
}

func PreviewFilename(baseFilename string) string        { return "preview_" + baseFilename }
func HidpiPreviewFilename(baseFilename string) string   { return "hidpipreview_" + baseFilename }
func ThumbnailFilename(baseFilename string) string      { return "thumb_" + baseFilename }
func HidpiThumbnailFilename(baseFilename string) string { return "hidpithumb_" + baseFilename }

// encodeFormat keeps the source's container: PNG sources produce PNG
// renditions, everything else is encoded as JPEG.
func encodeFormat(baseFilename string) imaging.Format {
	if strings.ToLower(filepath.Ext(baseFilename)) == ".png" {
		return imaging.PNG
	}
	return imaging.JPEG
}

// Generate produces all renditions for a normalized source image and saves
// them into the album's preview directory. Previews are generated only when
// a source dimension exceeds their threshold; thumbnails are always
// generated so list views are never without one. Any encode or write error
// is fatal for the photo and returned to the caller.
func (g *Generator) Generate(img image.Image, albumSlug, baseFilename string) (DerivedSet, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return DerivedSet{}, fmt.Errorf("invalid source image dimensions: %dx%d", width, height)
	}

	format := encodeFormat(baseFilename)
	var set DerivedSet

	if width > g.opts.PreviewMaxSize || height > g.opts.PreviewMaxSize {
		resized := imaging.Fit(img, g.opts.PreviewMaxSize, g.opts.PreviewMaxSize, imaging.Lanczos)
		relPath, err := g.save(resized, format, g.opts.PreviewQuality, albumSlug, PreviewFilename(baseFilename))
		if err != nil {
			return DerivedSet{}, fmt.Errorf("failed to generate preview: %w", err)
		}
		set.PreviewPath = &relPath
	}

	if width > g.opts.HidpiPreviewMaxSize || height > g.opts.HidpiPreviewMaxSize {
		resized := imaging.Fit(img, g.opts.HidpiPreviewMaxSize, g.opts.HidpiPreviewMaxSize, imaging.Lanczos)
		relPath, err := g.save(resized, format, g.opts.PreviewQuality, albumSlug, HidpiPreviewFilename(baseFilename))
		if err != nil {
			return DerivedSet{}, fmt.Errorf("failed to generate hidpi preview: %w", err)
		}
		set.HidpiPreviewPath = &relPath
	}

	thumb := imaging.Fill(img, g.opts.ThumbnailSize, g.opts.ThumbnailSize, imaging.Center, imaging.Lanczos)
	thumbPath, err := g.save(thumb, format, g.opts.ThumbnailQuality, albumSlug, ThumbnailFilename(baseFilename))
	if err != nil {
		return DerivedSet{}, fmt.Errorf("failed to generate thumbnail: %w", err)
	}
	set.ThumbnailPath = &thumbPath

	hidpiThumb := imaging.Fill(img, g.opts.HidpiThumbnailSize, g.opts.HidpiThumbnailSize, imaging.Center, imaging.Lanczos)
	hidpiThumbPath, err := g.save(hidpiThumb, format, g.opts.ThumbnailQuality, albumSlug, HidpiThumbnailFilename(baseFilename))
	if err != nil {
		return DerivedSet{}, fmt.Errorf("failed to generate hidpi thumbnail: %w", err)
	}
	set.HidpiThumbnailPath = &hidpiThumbPath

	return set, nil
}

// save encodes the rendition through a pipe into the store
func (g *Generator) save(img image.Image, format imaging.Format, quality int, albumSlug, filename string) (string, error) {
	reader, writer := io.Pipe()

	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, img, format, imaging.JPEGQuality(quality))
		if err != nil {
			log.Printf("generator: Failed to encode %s: %v", filename, err)
			writer.CloseWithError(fmt.Errorf("rendition encoding failed: %w", err))
		}
	}()

	savedRelPath, err := g.store.Save(AssetTypePreview, albumSlug, filename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to save %s via store: %w", filename, err)
	}
	return savedRelPath, nil
}
