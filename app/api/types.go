package api

import (
	"context"
	"time"

	"socialrss/app/database"
	"socialrss/app/feed"
	"socialrss/app/tasks"
)

type FeedManagerInterface interface {
	CreateOrUpdate(ctx context.Context, sourceURL string, maxPosts int) (*database.Feed, bool, error)
	Get(id string) (*database.Feed, error)
	List() ([]database.Feed, error)
	Delete(id string) error
	Document(id string) (string, error)
	Stats() (*database.FeedStats, error)
	Search(query string) ([]database.Feed, error)
}

var _ FeedManagerInterface = (*feed.Manager)(nil)

type Handler struct {
	manager   FeedManagerInterface
	scheduler tasks.TaskSchedulerInterface
}

type createFeedRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxPosts int    `json:"max_posts"`
}

type feedResponse struct {
	ID             string    `json:"id"`
	SourceURL      string    `json:"source_url"`
	Platform       string    `json:"platform"`
	Capability     string    `json:"capability"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	MaxPosts       int       `json:"max_posts"`
	UpdateInterval int       `json:"update_interval_minutes"`
	PostCount      int       `json:"post_count"`
	Status         string    `json:"status"`
	FeedURL        string    `json:"feed_url"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdatedAt  time.Time `json:"last_updated_at"`
}
