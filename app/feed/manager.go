package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"socialrss/app/cfg"
	"socialrss/app/database"
	"socialrss/app/scraper"
)

// PostSource is the scraping surface the manager needs.
type PostSource interface {
	Scrape(ctx context.Context, url string, maxPosts int) (scraper.SourceMetadata, []scraper.Post, error)
}

// Manager owns the feed lifecycle. Every feed is a record plus an XML
// artifact; the mutex keeps the pair consistent when refreshes, API
// calls and the sweeper race on the same feed.
type Manager struct {
	source      PostSource
	synthesizer *Synthesizer
	generator   *Generator
	repo        database.FeedRepository
	docs        database.DocumentStore

	mu sync.Mutex
}

func NewManager(source PostSource, repo database.FeedRepository, docs database.DocumentStore) *Manager {
	return &Manager{
		source:      source,
		synthesizer: NewSynthesizer(),
		generator:   NewGenerator(),
		repo:        repo,
		docs:        docs,
	}
}

// CreateOrUpdate registers a feed for the source URL and builds its
// document. The id is derived from the URL, so repeating the call for
// the same URL updates the existing feed instead of creating a second
// one. Returns the record and whether it was newly created.
func (m *Manager) CreateOrUpdate(ctx context.Context, sourceURL string, maxPosts int) (*database.Feed, bool, error) {
	if maxPosts <= 0 {
		maxPosts = cfg.Get().DefaultMaxPosts
	}

	id := StableID(sourceURL)
	platform := scraper.Detect(sourceURL)

	meta, posts, err := m.source.Scrape(ctx, sourceURL, maxPosts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to scrape %s: %w", sourceURL, err)
	}

	doc, err := m.synthesizer.Run(meta, posts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to synthesize feed %s: %w", id, err)
	}

	content, err := m.generator.Run(id, doc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate feed %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	created := false

	record, err := m.repo.GetFeed(id)
	if err == database.ErrNotFound {
		record = &database.Feed{
			ID:                    id,
			SourceURL:             sourceURL,
			Platform:              string(platform),
			UpdateIntervalMinutes: cfg.Get().UpdateInterval,
			Status:                database.FeedStatusActive,
			CreatedAt:             now,
		}
		created = true
	} else if err != nil {
		return nil, false, err
	}

	record.Title = doc.Title
	record.Description = doc.Description
	record.MaxPosts = maxPosts
	record.PostCount = len(doc.Entries)
	record.DocumentPath = m.docs.Path(id)
	record.LastUpdatedAt = now

	if err := m.docs.Write(id, content); err != nil {
		return nil, false, err
	}

	if created {
		err = m.repo.InsertFeed(record)
	} else {
		err = m.repo.UpdateFeed(record)
	}
	if err != nil {
		return nil, false, err
	}

	slog.Info("Feed updated", "id", id, "platform", platform, "posts", record.PostCount, "created", created)

	return record, created, nil
}

// Refresh rebuilds an existing feed from its stored source URL.
func (m *Manager) Refresh(ctx context.Context, id string) (*database.Feed, error) {
	record, err := m.repo.GetFeed(id)
	if err != nil {
		return nil, err
	}

	updated, _, err := m.CreateOrUpdate(ctx, record.SourceURL, record.MaxPosts)
	return updated, err
}

func (m *Manager) Get(id string) (*database.Feed, error) {
	return m.repo.GetFeed(id)
}

func (m *Manager) List() ([]database.Feed, error) {
	return m.repo.GetAllFeeds()
}

// Document returns the rendered XML for a feed. The record is checked
// first so a leftover artifact without a record still reads as absent.
func (m *Manager) Document(id string) (string, error) {
	if _, err := m.repo.GetFeed(id); err != nil {
		return "", err
	}
	return m.docs.Read(id)
}

// Delete removes the record and its artifact. A missing artifact is
// not an error; the record is authoritative.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.DeleteFeed(id); err != nil {
		return err
	}

	if err := m.docs.Remove(id); err != nil {
		slog.Warn("Failed to remove feed document", "id", id, "error", err)
	}

	return nil
}

// SweepStale deletes feeds not updated for more than maxAgeDays and
// returns how many were removed. Individual failures are logged and
// skipped so one broken feed does not stall the sweep.
func (m *Manager) SweepStale(maxAgeDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	stale, err := m.repo.GetFeedsUpdatedBefore(cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, feed := range stale {
		if err := m.Delete(feed.ID); err != nil {
			slog.Warn("Failed to delete stale feed", "id", feed.ID, "error", err)
			continue
		}
		slog.Info("Deleted stale feed", "id", feed.ID, "lastUpdatedAt", feed.LastUpdatedAt)
		removed++
	}

	return removed, nil
}

func (m *Manager) Stats() (*database.FeedStats, error) {
	return m.repo.GetStats()
}

func (m *Manager) Search(query string) ([]database.Feed, error) {
	return m.repo.SearchFeeds(query)
}
