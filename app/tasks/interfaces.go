package tasks

import (
	"context"

	"socialrss/app/database"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API layer to manage background
// task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// FeedManagerInterface is the slice of the feed manager the background
// tasks need.
type FeedManagerInterface interface {
	Refresh(ctx context.Context, id string) (*database.Feed, error)
	SweepStale(maxAgeDays int) (int, error)
}
