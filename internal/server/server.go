package server

import (
	"log"

	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/domain"
	"github.com/filedepot/filedepot/internal/handler"
	"github.com/filedepot/filedepot/internal/middleware"
	"github.com/filedepot/filedepot/internal/repository"
	"github.com/filedepot/filedepot/internal/service"
	"github.com/filedepot/filedepot/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	Blobs       domain.BlobStore
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	fileRepo := repository.NewMongoFileRepository(deps.MongoDB)
	sessionRepo := repository.NewRedisSessionRepository(deps.RedisClient)
	queue := repository.NewRedisJobQueue(deps.RedisClient, deps.Config.Queue.Name)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, deps.Config.Session.TTL)
	fileService := service.NewFileService(fileRepo, deps.Blobs, queue)

	// Initialize handlers
	appHandler := handler.NewAppHandler(deps.MongoDB, deps.RedisClient, userRepo, fileRepo)
	usersHandler := handler.NewUsersHandler(authService)
	authHandler := handler.NewAuthHandler(authService)
	filesHandler := handler.NewFilesHandler(fileService, authService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "filedepot API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Token",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}

	sessionAuth := middleware.SessionAuth(sessionRepo)

	// Health and stats
	app.Get("/status", appHandler.GetStatus)
	app.Get("/stats", appHandler.GetStats)

	// Users and sessions
	app.Post("/users", usersHandler.PostNew)
	app.Get("/users/me", sessionAuth, usersHandler.GetMe)
	app.Get("/connect", authHandler.GetConnect)
	app.Get("/disconnect", sessionAuth, authHandler.GetDisconnect)

	// Files
	app.Post("/files", sessionAuth, filesHandler.PostUpload)
	app.Get("/files", sessionAuth, filesHandler.GetIndex)
	app.Get("/files/:id", sessionAuth, filesHandler.GetShow)
	app.Put("/files/:id/publish", sessionAuth, filesHandler.PutPublish)
	app.Put("/files/:id/unpublish", sessionAuth, filesHandler.PutUnpublish)
	// Content is served without the auth middleware: public files are
	// readable anonymously and denial must be indistinguishable from absence
	app.Get("/files/:id/data", filesHandler.GetFile)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
