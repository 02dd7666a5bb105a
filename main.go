package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/photogallerist/gallerybackend/config"
	"github.com/photogallerist/gallerybackend/database"
	"github.com/photogallerist/gallerybackend/geocode"
	"github.com/photogallerist/gallerybackend/handlers"
	"github.com/photogallerist/gallerybackend/media"
	"github.com/photogallerist/gallerybackend/pipeline"
	"github.com/photogallerist/gallerybackend/repository"
	"github.com/photogallerist/gallerybackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.PhotosPath, cfg.PreviewsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeOriginal: filepath.Base(cfg.PhotosPath),
		media.AssetTypePreview:  filepath.Base(cfg.PreviewsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaRootPath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	albumRepo := repository.NewAlbumRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	exifRepo := repository.NewExifRepository(db)

	generator := media.NewGenerator(mediaStore, media.GeneratorOptions{
		PreviewMaxSize:      cfg.PreviewMaxSize,
		HidpiPreviewMaxSize: cfg.HidpiPreviewMaxSize,
		ThumbnailSize:       cfg.ThumbnailSize,
		HidpiThumbnailSize:  cfg.HidpiThumbnailSize,
		PreviewQuality:      cfg.PreviewQuality,
		ThumbnailQuality:    cfg.ThumbnailQuality,
	})
	extractor := media.NewExtractor(cfg.ShutterDecimalThreshold)

	var resolver geocode.Resolver
	if cfg.GeocodingAPIKey != "" {
		resolver = geocode.NewGoogleResolver(cfg.GeocodingAPIKey, cfg.GeocodingLanguage)
		log.Printf("Reverse geocoding enabled (language: %s)", cfg.GeocodingLanguage)
	} else {
		log.Printf("GEOCODING_API_KEY not set, reverse geocoding disabled")
	}

	pipe := pipeline.New(albumRepo, photoRepo, exifRepo, mediaStore, generator, extractor, resolver)

	log.Printf("Initializing pipeline worker pool (Workers: %d, Queue Size: %d)...", cfg.NumPipelineWorkers, cfg.PipelineQueueSize)
	pool := workers.NewPhotoWorkerPool(pipe, cfg.PipelineQueueSize, cfg.NumPipelineWorkers)

	// pick up photos that were registered but never processed, e.g. after
	// a crash or a deferred upload
	if pending, err := photoRepo.ListNotReady(); err != nil {
		log.Printf("Error listing unprocessed photos at startup: %v", err)
	} else {
		for i := range pending {
			pool.QueueJob(workers.Job{Kind: workers.JobProcessPhoto, PhotoID: pending[i].ID})
		}
		if len(pending) > 0 {
			log.Printf("Queued %d unprocessed photos at startup", len(pending))
		}
	}

	log.Printf("Media root: %s", cfg.MediaRootPath)
	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Preview sizes (longest side): %dpx / %dpx hidpi", cfg.PreviewMaxSize, cfg.HidpiPreviewMaxSize)
	log.Printf("Thumbnail sizes (square): %dpx / %dpx hidpi", cfg.ThumbnailSize, cfg.HidpiThumbnailSize)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	albumHandler := &handlers.AlbumHandler{Albums: albumRepo, Photos: photoRepo, Pipe: pipe, Pool: pool}
	photoHandler := &handlers.PhotoHandler{Photos: photoRepo, Pipe: pipe, Pool: pool}

	r.Route("/api", func(r chi.Router) {
		r.Route("/albums", func(r chi.Router) {
			r.Post("/", albumHandler.CreateAlbum)
			r.Get("/", albumHandler.ListAlbums)
			r.Route("/{album_identifier}", func(r chi.Router) {
				r.Get("/", albumHandler.GetAlbum)
				r.Put("/", albumHandler.UpdateAlbum)
				r.Delete("/", albumHandler.DeleteAlbum)
				r.Get("/photos", albumHandler.GetAlbumPhotos)
				r.Post("/scan", albumHandler.ScanAlbum)
				r.Post("/reconcile", albumHandler.ReconcileAlbum)
				r.Get("/progress", albumHandler.GetProgress)
				r.Post("/geocode", albumHandler.UpdateGeocoding)
			})
		})

		r.Route("/photos", func(r chi.Router) {
			r.Post("/", photoHandler.UploadPhoto)
			r.Route("/{photo_id}", func(r chi.Router) {
				r.Get("/", photoHandler.GetPhoto)
				r.Put("/", photoHandler.UpdatePhoto)
				r.Delete("/", photoHandler.DeletePhoto)
				r.Post("/process", photoHandler.ProcessPhoto)
			})
		})

		previewSubDir := filepath.Base(cfg.PreviewsPath)
		r.Get(fmt.Sprintf("/%s/*", previewSubDir), handlers.AssetServer(cfg.MediaRootPath, previewSubDir, previewSubDir))
		log.Printf("Registered preview server at /%s/*", previewSubDir)

		// originals live under /photos on disk but are served at
		// /photos-files to keep clear of the photo API routes
		photoSubDir := filepath.Base(cfg.PhotosPath)
		r.Get("/photos-files/*", handlers.AssetServer(cfg.MediaRootPath, "photos-files", photoSubDir))
		log.Printf("Registered original photo server at /photos-files/* (directory: %s)", photoSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
