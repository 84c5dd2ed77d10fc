package database

import (
	"database/sql"
	"fmt"
	"time"
)

const feedColumns = `id, source_url, platform, title, description, max_posts,
       update_interval_minutes, post_count, status, document_path, created_at, last_updated_at`

// FeedRepositoryImpl handles database operations for feeds
type FeedRepositoryImpl struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepositoryImpl {
	return &FeedRepositoryImpl{db: db}
}

func (r *FeedRepositoryImpl) GetFeed(id string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE id = ?
	`, id)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepositoryImpl) GetFeedBySourceURL(sourceURL string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE source_url = ?
	`, sourceURL)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by source URL: %w", err)
	}

	return feed, nil
}

func (r *FeedRepositoryImpl) GetAllFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + `
		FROM feeds
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func (r *FeedRepositoryImpl) InsertFeed(feed *Feed) error {
	status := feed.Status
	if status == "" {
		status = FeedStatusActive
	}

	_, err := r.db.Exec(`
		INSERT INTO feeds (id, source_url, platform, title, description, max_posts,
		                   update_interval_minutes, post_count, status, document_path,
		                   created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, feed.ID, feed.SourceURL, feed.Platform, feed.Title, feed.Description,
		feed.MaxPosts, feed.UpdateIntervalMinutes, feed.PostCount, status,
		feed.DocumentPath, feed.CreatedAt.UTC(), feed.LastUpdatedAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert feed: %w", err)
	}

	return nil
}

func (r *FeedRepositoryImpl) UpdateFeed(feed *Feed) error {
	result, err := r.db.Exec(`
		UPDATE feeds
		SET platform = ?, title = ?, description = ?, max_posts = ?,
		    update_interval_minutes = ?, post_count = ?, document_path = ?,
		    last_updated_at = ?
		WHERE id = ?
	`, feed.Platform, feed.Title, feed.Description, feed.MaxPosts,
		feed.UpdateIntervalMinutes, feed.PostCount, feed.DocumentPath,
		feed.LastUpdatedAt.UTC(), feed.ID)

	if err != nil {
		return fmt.Errorf("failed to update feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *FeedRepositoryImpl) DeleteFeed(id string) error {
	result, err := r.db.Exec("DELETE FROM feeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetFeedsUpdatedBefore returns feeds whose last update is strictly
// older than the cutoff, oldest first.
func (r *FeedRepositoryImpl) GetFeedsUpdatedBefore(cutoff time.Time) ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE last_updated_at < ?
		ORDER BY last_updated_at
	`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds updated before cutoff: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func (r *FeedRepositoryImpl) GetStats() (*FeedStats, error) {
	stats := &FeedStats{ByPlatform: make(map[string]int)}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = ? THEN 1 END),
		       COALESCE(SUM(post_count), 0)
		FROM feeds
	`, FeedStatusActive).Scan(&stats.TotalFeeds, &stats.ActiveFeeds, &stats.TotalPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed totals: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT platform, COUNT(*) FROM feeds GROUP BY platform
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		stats.ByPlatform[platform] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating platform counts: %w", err)
	}

	return stats, nil
}

// SearchFeeds matches the query case-insensitively against the feed
// title, description and platform.
func (r *FeedRepositoryImpl) SearchFeeds(query string) ([]Feed, error) {
	pattern := "%" + query + "%"

	rows, err := r.db.Query(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE title LIKE ? OR description LIKE ? OR platform LIKE ?
		ORDER BY created_at DESC
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.SourceURL, &feed.Platform, &feed.Title, &feed.Description,
		&feed.MaxPosts, &feed.UpdateIntervalMinutes, &feed.PostCount, &feed.Status,
		&feed.DocumentPath, &feed.CreatedAt, &feed.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

func collectFeeds(rows *sql.Rows) ([]Feed, error) {
	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}
