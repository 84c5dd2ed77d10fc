package database

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a feed id resolves to no record.
var ErrNotFound = errors.New("feed not found")

type FeedRepository interface {
	GetFeed(id string) (*Feed, error)
	GetFeedBySourceURL(sourceURL string) (*Feed, error)
	GetAllFeeds() ([]Feed, error)

	InsertFeed(feed *Feed) error
	UpdateFeed(feed *Feed) error
	DeleteFeed(id string) error

	GetFeedsUpdatedBefore(cutoff time.Time) ([]Feed, error)
	GetStats() (*FeedStats, error)
	SearchFeeds(query string) ([]Feed, error)
}

// DocumentStore persists rendered feed XML outside the database.
type DocumentStore interface {
	Write(id string, content string) error
	Read(id string) (string, error)
	Remove(id string) error
	Path(id string) string
}
