package database

import (
	"time"
)

// Feed status values. Deletion removes the row, so stored records are
// active; the deleted state is terminal.
const (
	FeedStatusActive  = "active"
	FeedStatusDeleted = "deleted"
)

// Feed represents a synthesized feed record in the database
type Feed struct {
	ID                    string // Stable identifier derived from the source URL
	SourceURL             string
	Platform              string
	Title                 string
	Description           string
	MaxPosts              int
	UpdateIntervalMinutes int
	PostCount             int
	Status                string
	DocumentPath          string // Relative path of the rendered XML artifact
	CreatedAt             time.Time
	LastUpdatedAt         time.Time
}

// FeedStats aggregates counts across all stored feeds
type FeedStats struct {
	TotalFeeds  int
	ActiveFeeds int
	TotalPosts  int
	ByPlatform  map[string]int
}
