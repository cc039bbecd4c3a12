package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/filedepot/filedepot/internal/domain"
)

// JobState is the processing state of a thumbnail job. Jobs move
// Received -> Validated -> Processing -> Completed | Failed; only the
// terminal states are observable outside the worker.
type JobState string

const (
	StateReceived   JobState = "received"
	StateValidated  JobState = "validated"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
)

// Worker consumes thumbnail jobs and writes derived blobs next to the
// original. Multiple workers may run against the same queue; regeneration
// overwrites the same derived locations so redelivered jobs are harmless.
type Worker struct {
	queue       domain.JobQueue
	files       domain.FileRepository
	blobs       domain.BlobStore
	pollTimeout time.Duration
}

// NewWorker creates a new thumbnail worker
func NewWorker(queue domain.JobQueue, files domain.FileRepository, blobs domain.BlobStore, pollTimeout time.Duration) *Worker {
	return &Worker{
		queue:       queue,
		files:       files,
		blobs:       blobs,
		pollTimeout: pollTimeout,
	}
}

// Run consumes jobs until the context is canceled. Job failures are logged
// and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		job, err := w.queue.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Error dequeuing job: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if _, err := w.Process(ctx, job); err != nil {
			log.Printf("Job failed: %s, error: %v", job.ID, err)
		} else {
			log.Printf("Job completed: %s", job.ID)
		}
	}
}

// Process runs a single job to a terminal state. Partially written sibling
// thumbnails from a failed job are left in place; a retry overwrites them.
func (w *Worker) Process(ctx context.Context, job *domain.ThumbnailJob) (JobState, error) {
	// Received -> Validated
	if job.FileID == "" {
		return StateFailed, errors.New("missing fileId")
	}
	if job.UserID == "" {
		return StateFailed, errors.New("missing userId")
	}

	// Validated -> Processing: the owner scope guards against stale or forged
	// jobs referencing another user's file
	file, err := w.files.GetOwned(ctx, job.FileID, job.UserID)
	if err != nil {
		return StateFailed, fmt.Errorf("file not found: %w", err)
	}

	original, err := w.readBlob(ctx, file.LocalPath)
	if err != nil {
		return StateFailed, err
	}

	// Processing -> Completed requires every width to succeed
	for _, width := range domain.ThumbnailWidths {
		thumb, err := Generate(original, width)
		if err != nil {
			return StateFailed, fmt.Errorf("failed to generate %dpx thumbnail: %w", width, err)
		}
		location := fmt.Sprintf("%s_%d", file.LocalPath, width)
		if err := w.blobs.WriteAt(ctx, location, thumb); err != nil {
			return StateFailed, fmt.Errorf("failed to store %dpx thumbnail: %w", width, err)
		}
	}

	return StateCompleted, nil
}

func (w *Worker) readBlob(ctx context.Context, location string) ([]byte, error) {
	reader, err := w.blobs.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open original blob: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read original blob: %w", err)
	}
	return data, nil
}
