package handler

import (
	"github.com/filedepot/filedepot/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppHandler handles service health and stats endpoints
type AppHandler struct {
	db    *mongo.Database
	redis *redis.Client
	users domain.UserRepository
	files domain.FileRepository
}

// NewAppHandler creates a new app handler
func NewAppHandler(db *mongo.Database, redisClient *redis.Client, users domain.UserRepository, files domain.FileRepository) *AppHandler {
	return &AppHandler{
		db:    db,
		redis: redisClient,
		users: users,
		files: files,
	}
}

// GetStatus handles GET /status with live pings against both stores
func (h *AppHandler) GetStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	return c.JSON(fiber.Map{
		"redis": h.redis.Ping(ctx).Err() == nil,
		"db":    h.db.Client().Ping(ctx, nil) == nil,
	})
}

// GetStats handles GET /stats
func (h *AppHandler) GetStats(c *fiber.Ctx) error {
	users, err := h.users.Count(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	files, err := h.files.Count(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"files": files,
	})
}
