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

	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/pipeline"
	"github.com/photogallerist/gallerybackend/repository"
	"github.com/photogallerist/gallerybackend/workers"
)

const maxUploadSize = 100 << 20 // 100 MiB

type PhotoHandler struct {
	Photos repository.PhotoRepositoryInterface
	Pipe   *pipeline.Pipeline
	Pool   *workers.PhotoWorkerPool
}

func parsePhotoID(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "photo_id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// UploadPhoto accepts a multipart upload, stores the original and
// registers the photo. With process=now the pipeline runs before the
// response; otherwise the photo is queued for the worker pool.
func (ph *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to parse multipart form: " + err.Error()})
		return
	}

	albumIDStr := r.FormValue("album_id")
	albumID, err := strconv.ParseUint(albumIDStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing or invalid album_id"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing file field"})
		return
	}
	defer file.Close()

	if !media.IsSupportedImage(header.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Unsupported image type"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	processNow := r.FormValue("process") != "later"

	photo, err := ph.Pipe.RegisterPhoto(r.Context(), uint(albumID), title, header.Filename, file, processNow)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Album not found"})
			return
		}
		log.Printf("Error registering photo '%s': %v", header.Filename, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to register photo"})
		return
	}

	if !processNow {
		ph.Pool.QueueJob(workers.Job{Kind: workers.JobProcessPhoto, PhotoID: photo.ID})
	}

	writeJSON(w, http.StatusCreated, photo)
}

func (ph *PhotoHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid photo ID"})
		return
	}

	photo, err := ph.Photos.GetByID(photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Photo not found"})
		} else {
			log.Printf("Error getting photo %d: %v", photoID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve photo"})
		}
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

func (ph *PhotoHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid photo ID"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Title cannot be empty"})
		return
	}

	if err := ph.Photos.UpdateDetails(photoID, req.Title, req.Description); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Photo not found"})
		} else {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "Photo title already exists"})
				return
			}
			log.Printf("Error updating photo %d: %v", photoID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update photo"})
		}
		return
	}

	updated, err := ph.Photos.GetByID(photoID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve updated photo"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ProcessPhoto re-runs the pipeline for one photo via the worker pool.
// The force query parameter bypasses the unchanged-hash skip.
func (ph *PhotoHandler) ProcessPhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid photo ID"})
		return
	}

	if _, err := ph.Photos.GetByID(photoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Photo not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve photo"})
		}
		return
	}

	force := r.URL.Query().Get("force") == "true"
	queued := ph.Pool.QueueJob(workers.Job{Kind: workers.JobProcessPhoto, PhotoID: photoID, Force: force})
	if !queued {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Processing already pending for this photo"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"message": "Processing queued", "photo_id": photoID, "force": force})
}

func (ph *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := parsePhotoID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid photo ID"})
		return
	}

	if err := ph.Pipe.DeletePhoto(photoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Photo not found"})
		} else {
			log.Printf("Error deleting photo %d: %v", photoID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete photo"})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Photo deleted"})
}
