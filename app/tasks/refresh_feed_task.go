package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type RefreshFeedTask struct {
	Task
	manager FeedManagerInterface
}

func NewRefreshFeedTask(feedID string, manager FeedManagerInterface) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:    NewTask(TaskTypeRefreshFeed, feedID),
		manager: manager,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	feed, err := t.manager.Refresh(ctx, t.FeedID)
	if err != nil {
		return fmt.Errorf("failed to refresh feed: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshFeed",
		"feed", t.FeedID,
		"duration", t.GetDuration(),
		"posts", feed.PostCount)

	return nil
}
