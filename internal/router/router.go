package router

import (
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/handlers"
	"github.com/groupo-app/backend/internal/media"
	"github.com/groupo-app/backend/internal/middleware"
	"github.com/groupo-app/backend/internal/models"
	"github.com/groupo-app/backend/internal/push"
	"github.com/groupo-app/backend/internal/repositories"
	"github.com/groupo-app/backend/internal/storage"
	"github.com/groupo-app/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	e *echo.Echo,
	db *gorm.DB,
	cfg *config.Config,
	backend storage.Backend,
	fallback storage.Backend,
	fcm *messaging.Client,
	logger *zap.Logger,
) {
	// AutoMigrate models
	err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Uploaded local files are served back by filename under a fixed prefix.
	if local, ok := fallback.(*storage.Local); ok {
		e.Static(storage.RoutePrefix, local.Dir())
	} else if local, ok := backend.(*storage.Local); ok {
		e.Static(storage.RoutePrefix, local.Dir())
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	groupRepo := repositories.NewPostgresGroupRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(db)

	// --- Core services ---
	ingestor := media.NewIngestor(backend, fallback, cfg.MaxFilesPerPost, logger)
	resolver := storage.NewResolver(backend, logger)
	dispatcher := push.NewDispatcher(cfg.PushEndpoint, deviceTokenRepo, fcm, logger)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require API token authentication) ---
	api := e.Group("/api")
	api.Use(middleware.TokenAuthMiddleware(userRepo))
	log.Println("Token authentication middleware applied to /api group.")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	groupHandler := handlers.NewGroupHandler(groupRepo, userRepo)
	groupHandler.RegisterGroupRoutes(api)
	log.Println("Group routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, ingestor, resolver, dispatcher)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, groupRepo, dispatcher)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	pushHandler := handlers.NewPushHandler(deviceTokenRepo)
	pushHandler.RegisterPushRoutes(api)
	log.Println("Push routes configured.")

	log.Println("All routes configured.")
}
