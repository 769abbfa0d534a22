package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/brightfix/showcasebackend/config"
	"github.com/brightfix/showcasebackend/database"
	"github.com/brightfix/showcasebackend/handlers"
	"github.com/brightfix/showcasebackend/media"
	"github.com/brightfix/showcasebackend/repository"
	"github.com/brightfix/showcasebackend/services"
)

const localMediaRoute = "/api/media/"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database: %v", err)
	}

	var blobStore media.BlobStore
	var localStore *media.LocalBlobStore
	switch cfg.BlobDriver {
	case config.BlobDriverS3:
		blobStore, err = media.NewMinioBlobStore(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize blob store: %v", err)
		}
	default:
		localStore, err = media.NewLocalBlobStore(cfg.MediaStoragePath, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize blob store: %v", err)
		}
		blobStore = localStore
	}

	validator := media.NewValidator(cfg.AllowedMimeTypes, cfg.MaxUploadBytes)
	transcoder := media.NewTranscoder(cfg.MaxImageDimension, cfg.JpegQuality, cfg.AutoRotate)
	photoSetRepo := repository.NewPhotoSetRepository(db)

	submissionSvc := services.NewSubmissionService(
		validator, transcoder, blobStore, photoSetRepo,
		cfg.TranscodeConcurrency, cfg.UploadTimeout,
	)
	approvalSvc := services.NewApprovalService(photoSetRepo)

	log.Printf("Upload policy: max %d files/submission, %d bytes/file, types %v",
		cfg.MaxFilesPerSubmit, cfg.MaxUploadBytes, cfg.AllowedMimeTypes)
	log.Printf("Transcoder: fit within %dpx, JPEG quality %d, auto-rotate %t (workers: %d)",
		cfg.MaxImageDimension, cfg.JpegQuality, cfg.AutoRotate, cfg.TranscodeConcurrency)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
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
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(corsHandler.Handler)

	photoSetHandler := handlers.NewPhotoSetHandler(submissionSvc, approvalSvc, photoSetRepo, cfg)
	requireAuth := handlers.AuthMiddleware([]byte(cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		// public gallery: approved sets only
		r.Get("/gallery", photoSetHandler.ListGallery)

		r.Route("/photosets", func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", photoSetHandler.CreateSubmission)
			r.With(handlers.RequireAdmin).Post("/direct", photoSetHandler.CreateDirect)
			r.With(handlers.RequireAdmin).Get("/", photoSetHandler.ListPhotoSets)
			r.With(handlers.RequireAdmin).Get("/pending/count", photoSetHandler.PendingCount)

			r.Route("/{photoset_id}", func(r chi.Router) {
				r.Get("/", photoSetHandler.GetPhotoSet)
				r.Put("/", photoSetHandler.UpdateMetadata)
				r.With(handlers.RequireAdmin).Put("/status", photoSetHandler.UpdateStatus)
				r.With(handlers.RequireAdmin).Delete("/", photoSetHandler.DeletePhotoSet)
			})
		})

		if localStore != nil {
			r.Get("/media/*", handlers.AssetServer(localStore.BasePath(), localMediaRoute))
			log.Printf("Registered local media server at %s*", localMediaRoute)
		}
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
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
