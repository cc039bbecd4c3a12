package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/filedepot/filedepot/internal/config"
	"github.com/filedepot/filedepot/internal/repository"
	"github.com/filedepot/filedepot/internal/thumbnail"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting filedepot thumbnail worker...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	ctxMongo, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctxMongo, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(ctxMongo, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("✓ MongoDB connected")

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("✓ Redis connected")

	// Initialize blob storage
	blobs, err := repository.NewBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	log.Printf("✓ Blob storage ready (%s)", cfg.Storage.Backend)

	fileRepo := repository.NewMongoFileRepository(mongoClient.Database(cfg.MongoDB.Database))
	queue := repository.NewRedisJobQueue(redisClient, cfg.Queue.Name)
	worker := thumbnail.NewWorker(queue, fileRepo, blobs, cfg.Queue.PollTimeout)

	log.Printf("🚀 Consuming queue %q with %d worker(s)", cfg.Queue.Name, cfg.Queue.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Queue.Concurrency; i++ {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker exited with error: %v", err)
	}
	log.Println("Worker stopped")
}
