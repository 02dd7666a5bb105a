package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/photogallerist/gallerybackend/database"
	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/models"
	"github.com/photogallerist/gallerybackend/pipeline"
	"github.com/photogallerist/gallerybackend/repository"
)

// uploadEnv wires a PhotoHandler against a real sqlite database and a
// LocalStorage rooted in a temp dir, with no worker pool (uploads are
// processed synchronously unless process=later is sent).
type uploadEnv struct {
	handler *PhotoHandler
	store   *media.LocalStorage
	album   *models.Album
}

func newUploadEnv(t *testing.T) *uploadEnv {
	t.Helper()
	root := t.TempDir()
	db, err := database.InitGormDB(filepath.Join(root, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	store, err := media.NewLocalStorage(root, map[media.AssetType]string{
		media.AssetTypeOriginal: "photos",
		media.AssetTypePreview:  "previews",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	albums := repository.NewAlbumRepository(db)
	photos := repository.NewPhotoRepository(db)
	exifs := repository.NewExifRepository(db)
	pipe := pipeline.New(albums, photos, exifs, store,
		media.NewGenerator(store, media.GeneratorOptions{}),
		media.NewExtractor(0), nil)

	album := &models.Album{Title: "Trip", Slug: "trip", Public: true}
	if err := albums.Create(album); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}

	return &uploadEnv{
		handler: &PhotoHandler{Photos: photos, Pipe: pipe},
		store:   store,
		album:   album,
	}
}

// uploadRequest builds a multipart POST with an encoded JPEG file field.
func uploadRequest(t *testing.T, albumID uint, filename string, width, height int) *http.Request {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var encoded bytes.Buffer
	if err := imaging.Encode(&encoded, img, imaging.JPEG); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("album_id", fmt.Sprint(albumID)); err != nil {
		t.Fatalf("failed to write album_id field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create file field: %v", err)
	}
	if _, err := fw.Write(encoded.Bytes()); err != nil {
		t.Fatalf("failed to write file field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to finish multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPhotoProcessesSynchronously(t *testing.T) {
	env := newUploadEnv(t)

	rec := httptest.NewRecorder()
	env.handler.UploadPhoto(rec, uploadRequest(t, env.album.ID, "upload.jpg", 800, 600))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var photo models.Photo
	if err := json.NewDecoder(rec.Body).Decode(&photo); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !photo.Ready {
		t.Error("expected photo ready after synchronous upload")
	}
	if photo.SourcePath != "photos/trip/upload.jpg" {
		t.Errorf("source path = %q", photo.SourcePath)
	}
	if photo.ThumbnailPath == nil {
		t.Fatal("expected thumbnail recorded")
	}

	// the streamed upload must land on disk intact
	fullPath, err := env.store.GetFullPath(photo.SourcePath)
	if err != nil {
		t.Fatalf("GetFullPath failed: %v", err)
	}
	if img, err := imaging.Open(fullPath); err != nil {
		t.Errorf("stored original does not decode: %v", err)
	} else if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("stored original is %dx%d, want 800x600", b.Dx(), b.Dy())
	}
	thumbPath, err := env.store.GetFullPath(*photo.ThumbnailPath)
	if err != nil {
		t.Fatalf("GetFullPath failed: %v", err)
	}
	if _, err := os.Stat(thumbPath); err != nil {
		t.Errorf("thumbnail missing on disk: %v", err)
	}
}

func TestUploadPhotoRejectsUnsupportedType(t *testing.T) {
	env := newUploadEnv(t)

	rec := httptest.NewRecorder()
	env.handler.UploadPhoto(rec, uploadRequest(t, env.album.ID, "notes.txt", 10, 10))

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestUploadPhotoUnknownAlbum(t *testing.T) {
	env := newUploadEnv(t)

	rec := httptest.NewRecorder()
	env.handler.UploadPhoto(rec, uploadRequest(t, 9999, "upload.jpg", 10, 10))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
