package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type SweepStaleTask struct {
	Task
	manager FeedManagerInterface
	maxAge  int
}

func NewSweepStaleTask(manager FeedManagerInterface, maxAgeDays int) *SweepStaleTask {
	return &SweepStaleTask{
		Task:    NewTask(TaskTypeSweepStale, ""),
		manager: manager,
		maxAge:  maxAgeDays,
	}
}

func (t *SweepStaleTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	removed, err := t.manager.SweepStale(t.maxAge)
	if err != nil {
		return fmt.Errorf("failed to sweep stale feeds: %w", err)
	}

	slog.Info("Task completed",
		"type", "SweepStale",
		"duration", t.GetDuration(),
		"removed", removed,
		"max_age_days", t.maxAge)

	return nil
}
