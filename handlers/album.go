package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/photogallerist/gallerybackend/models"
	"github.com/photogallerist/gallerybackend/pipeline"
	"github.com/photogallerist/gallerybackend/repository"
	"github.com/photogallerist/gallerybackend/utils"
	"github.com/photogallerist/gallerybackend/workers"
)

type AlbumHandler struct {
	Albums repository.AlbumRepositoryInterface
	Photos repository.PhotoRepositoryInterface
	Pipe   *pipeline.Pipeline
	Pool   *workers.PhotoWorkerPool
}

func (ah *AlbumHandler) getAlbumByIdentifier(identifier string) (*models.Album, error) {
	// try parsing as ID
	if albumID, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		album, err := ah.Albums.GetByID(uint(albumID))
		if err == nil {
			return album, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// not a valid ID or not found by ID, try fetching by slug
	return ah.Albums.GetBySlug(identifier)
}

func (ah *AlbumHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Public      *bool   `json:"public"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: title"})
		return
	}

	album := &models.Album{
		Title:       strings.TrimSpace(req.Title),
		Slug:        utils.Slugify(req.Title),
		Description: req.Description,
		Public:      true,
	}
	if req.Public != nil {
		album.Public = *req.Public
	}

	if err := ah.Albums.Create(album); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Album title or slug already exists"})
		} else {
			log.Printf("Error creating album '%s': %v", req.Title, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create album"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (ah *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := ah.Albums.ListAll()
	if err != nil {
		log.Printf("Error listing albums: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve albums"})
		return
	}
	if albums == nil {
		albums = []models.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

func (ah *AlbumHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "album_identifier")

	album, err := ah.getAlbumByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			log.Printf("Error getting album by identifier '%s': %v", identifier, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (ah *AlbumHandler) GetAlbumPhotos(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	photos, err := ah.Photos.ListByAlbumID(album.ID)
	if err != nil {
		log.Printf("Error listing photos for album %d: %v", album.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve photos"})
		return
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (ah *AlbumHandler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		Public       *bool   `json:"public"`
		CoverPhotoID *uint   `json:"cover_photo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Title cannot be empty"})
			return
		}
		album.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		album.Description = req.Description
	}
	if req.Public != nil {
		album.Public = *req.Public
	}
	if req.CoverPhotoID != nil {
		album.CoverPhotoID = req.CoverPhotoID
	}

	if err := ah.Albums.Update(album); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Album title already exists"})
		} else {
			log.Printf("Error updating album %d: %v", album.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update album"})
		}
		return
	}

	updated, err := ah.Albums.GetByID(album.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve updated album"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (ah *AlbumHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	if err := ah.Pipe.DeleteAlbum(album.ID); err != nil {
		log.Printf("Error deleting album %d: %v", album.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete album"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Album deleted"})
}

// ScanAlbum registers new image files found in the album's directory
func (ah *AlbumHandler) ScanAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	result, err := ah.Pipe.ScanAlbum(album.ID)
	if err != nil {
		log.Printf("Error scanning album %d: %v", album.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to scan album directory"})
		return
	}

	// newly registered photos are ready=false; hand them to the worker pool
	photos, err := ah.Photos.ListByAlbumID(album.ID)
	if err == nil {
		for i := range photos {
			if !photos[i].Ready {
				ah.Pool.QueueJob(workers.Job{Kind: workers.JobProcessPhoto, PhotoID: photos[i].ID})
			}
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// ReconcileAlbum submits a batch job re-running the pipeline across the
// album; progress is available via GetProgress while it runs
func (ah *AlbumHandler) ReconcileAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	force := r.URL.Query().Get("force") == "true"
	queued := ah.Pool.QueueJob(workers.Job{Kind: workers.JobReconcileAlbum, AlbumID: album.ID, Force: force})
	if !queued {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Reconciliation already pending for this album"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"message": "Reconciliation queued", "album_id": album.ID, "force": force})
}

// GetProgress reports "N of M processed" for a running batch job
func (ah *AlbumHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	progress, ok := ah.Pipe.Progress().Get(album.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No job running for this album"})
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// UpdateGeocoding submits a geocoding pass over the album's located photos
func (ah *AlbumHandler) UpdateGeocoding(w http.ResponseWriter, r *http.Request) {
	album, err := ah.getAlbumByIdentifier(chi.URLParam(r, "album_identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve album"})
		}
		return
	}

	var req struct {
		Overwrite bool `json:"overwrite"`
	}
	if r.Body != nil {
		// an empty body means fill-missing
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	queued := ah.Pool.QueueJob(workers.Job{Kind: workers.JobUpdateGeocoding, AlbumID: album.ID, Overwrite: req.Overwrite})
	if !queued {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Geocoding update already pending for this album"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"message": "Geocoding update queued", "album_id": album.ID, "overwrite": req.Overwrite})
}
