package domain

import (
	"context"
	"time"
)

// ThumbnailJob asks a worker to generate thumbnails for an image file. Jobs
// are ephemeral: they exist only inside the queue between enqueue and
// processing and are never persisted as queryable entities.
type ThumbnailJob struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// JobQueue is a durable FIFO work queue with at-least-once delivery. A job is
// handed to exactly one consumer at a time, but a consumer crash mid-job may
// cause redelivery, so processing must be idempotent.
type JobQueue interface {
	// Enqueue appends a job to the queue.
	Enqueue(ctx context.Context, job *ThumbnailJob) error

	// Dequeue blocks up to timeout for the next job. Returns (nil, nil) when
	// no job arrived within the window.
	Dequeue(ctx context.Context, timeout time.Duration) (*ThumbnailJob, error)
}
