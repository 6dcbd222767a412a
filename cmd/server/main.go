package main

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"

	"github.com/groupo-app/backend/internal/router"
	"github.com/groupo-app/backend/internal/storage"
	"github.com/groupo-app/backend/pkg/config"
	"github.com/groupo-app/backend/pkg/firebase"
	"github.com/groupo-app/backend/pkg/logging"
	"github.com/groupo-app/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresConnStr)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDB(db)

	// Local storage always exists: it is either the active backend or the
	// fallback target for failed object-storage uploads.
	local, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	ctx := context.Background()

	var backend storage.Backend = local
	var fallback storage.Backend
	if cfg.StorageBackend == config.BackendS3 {
		s3Backend, err := storage.NewS3(ctx, storage.S3Options{
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.AWSRegion,
			URLExpires:      time.Duration(cfg.S3URLExpires) * time.Second,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		backend = s3Backend
		fallback = local
	}

	// Firebase messaging is optional; Expo pushes work without it.
	var fcm *messaging.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		fcm = firebaseApp.Messaging
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db, cfg, backend, fallback, fcm, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
