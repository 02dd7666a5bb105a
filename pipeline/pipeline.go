package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/photogallerist/gallerybackend/geocode"
	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/models"
	"github.com/photogallerist/gallerybackend/repository"
	"github.com/photogallerist/gallerybackend/utils"
)

// Pipeline coordinates hashing, orientation correction, derived media
// generation, metadata extraction and geocoding for photos. Persistence is
// an injected collaborator; each run is a function of the source file
// bytes plus its write targets, so photos can be processed in parallel.
type Pipeline struct {
	albums    repository.AlbumRepositoryInterface
	photos    repository.PhotoRepositoryInterface
	exifs     repository.ExifRepositoryInterface
	store     media.Store
	generator *media.Generator
	extractor *media.Extractor
	resolver  geocode.Resolver
	progress  *ProgressTracker
}

func New(
	albums repository.AlbumRepositoryInterface,
	photos repository.PhotoRepositoryInterface,
	exifs repository.ExifRepositoryInterface,
	store media.Store,
	generator *media.Generator,
	extractor *media.Extractor,
	resolver geocode.Resolver,
) *Pipeline {
	return &Pipeline{
		albums:    albums,
		photos:    photos,
		exifs:     exifs,
		store:     store,
		generator: generator,
		extractor: extractor,
		resolver:  resolver,
		progress:  NewProgressTracker(),
	}
}

// Progress exposes the tracker for batch progress polling
func (p *Pipeline) Progress() *ProgressTracker {
	return p.progress
}

// ProcessPhoto runs the full single-photo pipeline: digest check, decode,
// orientation correction, rendition generation and metadata extraction.
// When force is false and the stored digest matches a ready photo, the run
// is a no-op. A decode or rendition write failure leaves the photo
// not-ready with the error recorded and is returned to the caller; a
// metadata failure is absorbed.
func (p *Pipeline) ProcessPhoto(ctx context.Context, photoID uint, force bool) error {
	photo, err := p.photos.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to load photo %d: %w", photoID, err)
	}
	album, err := p.albums.GetByID(photo.AlbumID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to load album %d for photo %d: %w", photo.AlbumID, photoID, err)
	}

	srcPath, err := p.store.GetFullPath(photo.SourcePath)
	if err != nil {
		return fmt.Errorf("pipeline: invalid source path for photo %d: %w", photoID, err)
	}

	digest, err := media.HashFile(srcPath)
	if err != nil {
		hashErr := fmt.Errorf("pipeline: failed to hash %s: %w", photo.SourcePath, err)
		p.markNotReady(photo.ID, hashErr)
		return hashErr
	}

	if !force && photo.Ready && digest == photo.FileHash {
		log.Printf("pipeline: Photo %d (%s) unchanged, skipping", photo.ID, photo.SourcePath)
		return nil
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		decodeErr := fmt.Errorf("pipeline: failed to decode %s: %w", photo.SourcePath, err)
		p.markNotReady(photo.ID, decodeErr)
		return decodeErr
	}
	img = media.NormalizeOrientation(img, media.ReadOrientation(srcPath))

	derived, err := p.generator.Generate(img, album.Slug, filepath.Base(photo.SourcePath))
	if err != nil {
		genErr := fmt.Errorf("pipeline: failed to derive media for %s: %w", photo.SourcePath, err)
		p.markNotReady(photo.ID, genErr)
		return genErr
	}

	p.saveExifData(ctx, photo.ID, srcPath)

	if err := p.photos.SetPipelineResult(photo.ID, digest, derived); err != nil {
		return fmt.Errorf("pipeline: failed to store result for photo %d: %w", photo.ID, err)
	}

	log.Printf("pipeline: Processed photo %d (%s)", photo.ID, photo.SourcePath)
	return nil
}

func (p *Pipeline) markNotReady(photoID uint, taskErr error) {
	if dbErr := p.photos.MarkNotReady(photoID, taskErr); dbErr != nil {
		log.Printf("pipeline: ERROR marking photo %d not ready: %v", photoID, dbErr)
	}
}

// saveExifData extracts and stores metadata for a photo. Extraction
// failures never fail the pipeline; a source without a parseable EXIF
// block gets no metadata record, and any record left over from earlier
// content is removed so metadata always describes the current file.
func (p *Pipeline) saveExifData(ctx context.Context, photoID uint, srcPath string) {
	info, err := p.extractor.Extract(srcPath)
	if err != nil {
		log.Printf("pipeline: ERROR extracting metadata for photo %d: %v", photoID, err)
		return
	}
	if info == nil || (!info.HasExifData && !info.HasLocation) {
		if err := p.exifs.DeleteByPhotoID(photoID); err != nil {
			log.Printf("pipeline: ERROR clearing stale metadata for photo %d: %v", photoID, err)
		}
		return
	}

	meta := &models.ExifMetadata{
		PhotoID:      photoID,
		Make:         info.Make,
		Model:        info.Model,
		ISO:          info.ISO,
		ShutterSpeed: info.ShutterSpeed,
		Aperture:     info.Aperture,
		FocalLength:  info.FocalLength,
		Lens:         info.Lens,
	}
	if info.TakenAt != nil {
		ts := info.TakenAt.Unix()
		meta.TakenAt = &ts
	}

	if info.HasLocation {
		meta.HasLocation = true
		meta.Latitude = info.Latitude
		meta.Longitude = info.Longitude
		meta.Altitude = info.Altitude
		if p.resolver != nil {
			if res, ok := p.resolver.Resolve(ctx, *info.Latitude, *info.Longitude); ok {
				meta.Locality = res.Locality
				meta.Country = res.Country
			}
		}
	}

	if err := p.exifs.Upsert(meta); err != nil {
		log.Printf("pipeline: ERROR storing metadata for photo %d: %v", photoID, err)
	}
}

// RegisterPhoto accepts an uploaded file into an album. With processNow
// the full pipeline runs synchronously before the photo is considered
// saved; otherwise the photo is persisted ready=false for an out-of-band
// worker.
func (p *Pipeline) RegisterPhoto(ctx context.Context, albumID uint, title, filename string, data io.Reader, processNow bool) (*models.Photo, error) {
	album, err := p.albums.GetByID(albumID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to load album %d: %w", albumID, err)
	}
	if !media.IsSupportedImage(filename) {
		return nil, fmt.Errorf("pipeline: unsupported image file %q", filename)
	}

	relPath, err := p.store.Save(media.AssetTypeOriginal, album.Slug, filepath.Base(filename), data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to store upload %q: %w", filename, err)
	}

	if title == "" {
		base := filepath.Base(filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	photo, err := p.newPhotoRecord(album.ID, title, relPath)
	if err != nil {
		return nil, err
	}

	if processNow {
		if err := p.ProcessPhoto(ctx, photo.ID, true); err != nil {
			return photo, err
		}
		return p.photos.GetByID(photo.ID)
	}
	return photo, nil
}

// newPhotoRecord persists a ready=false photo, disambiguating slug
// collisions with a random suffix
func (p *Pipeline) newPhotoRecord(albumID uint, title, sourcePath string) (*models.Photo, error) {
	slug := utils.Slugify(title)
	exists, err := p.photos.SlugExists(slug)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to check slug %q: %w", slug, err)
	}
	if exists {
		slug = slug + "-" + utils.RandomSlugSuffix()
	}

	photo := &models.Photo{
		AlbumID:    albumID,
		Title:      title,
		Slug:       slug,
		SourcePath: filepath.ToSlash(sourcePath),
		Ready:      false,
	}
	if err := p.photos.Create(photo); err != nil {
		return nil, fmt.Errorf("pipeline: failed to register photo %q: %w", title, err)
	}
	return photo, nil
}

// DeletePhoto removes a photo record together with its original file and
// derived media, orphaning no disk state
func (p *Pipeline) DeletePhoto(photoID uint) error {
	photo, err := p.photos.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to load photo %d: %w", photoID, err)
	}

	for _, relPath := range photo.DerivedPaths() {
		if err := p.store.Delete(relPath); err != nil {
			log.Printf("pipeline: ERROR deleting rendition %s: %v", relPath, err)
		}
	}
	if err := p.store.Delete(photo.SourcePath); err != nil {
		log.Printf("pipeline: ERROR deleting original %s: %v", photo.SourcePath, err)
	}
	if err := p.exifs.DeleteByPhotoID(photo.ID); err != nil {
		log.Printf("pipeline: ERROR deleting metadata for photo %d: %v", photo.ID, err)
	}
	return p.photos.Delete(photo.ID)
}

// DeleteAlbum removes an album, its photo records and both of its media
// directories
func (p *Pipeline) DeleteAlbum(albumID uint) error {
	album, err := p.albums.GetByID(albumID)
	if err != nil {
		return fmt.Errorf("pipeline: failed to load album %d: %w", albumID, err)
	}

	photos, err := p.photos.ListByAlbumID(albumID)
	if err != nil {
		return err
	}
	for i := range photos {
		if err := p.exifs.DeleteByPhotoID(photos[i].ID); err != nil {
			log.Printf("pipeline: ERROR deleting metadata for photo %d: %v", photos[i].ID, err)
		}
		if err := p.photos.Delete(photos[i].ID); err != nil {
			log.Printf("pipeline: ERROR deleting photo %d: %v", photos[i].ID, err)
		}
	}

	if err := p.store.DeleteAlbumDirs(album.Slug); err != nil {
		return fmt.Errorf("pipeline: failed to delete album directories for %s: %w", album.Slug, err)
	}
	return p.albums.Delete(albumID)
}
