package database

import (
	"errors"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func sampleFeed(id string) *Feed {
	now := time.Now().UTC().Truncate(time.Second)
	return &Feed{
		ID:                    id,
		SourceURL:             "https://www.instagram.com/" + id,
		Platform:              "instagram",
		Title:                 "Feed for " + id + " on Instagram",
		Description:           "Latest posts from " + id,
		MaxPosts:              10,
		UpdateIntervalMinutes: 60,
		PostCount:             3,
		Status:                FeedStatusActive,
		DocumentPath:          "./data/" + id + ".xml",
		CreatedAt:             now,
		LastUpdatedAt:         now,
	}
}

func TestInsertAndGetFeed(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	feed := sampleFeed("user1")
	if err := repo.InsertFeed(feed); err != nil {
		t.Fatalf("InsertFeed failed: %v", err)
	}

	got, err := repo.GetFeed("user1")
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if got.SourceURL != feed.SourceURL || got.Title != feed.Title || got.PostCount != 3 {
		t.Errorf("Round-trip mismatch: %+v", got)
	}
	if got.Status != FeedStatusActive || got.UpdateIntervalMinutes != 60 {
		t.Errorf("Lifecycle fields not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(feed.CreatedAt) {
		t.Errorf("CreatedAt mismatch: %v vs %v", got.CreatedAt, feed.CreatedAt)
	}
}

func TestGetFeedNotFound(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	if _, err := repo.GetFeed("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetFeedBySourceURL(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	feed := sampleFeed("user1")
	if err := repo.InsertFeed(feed); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetFeedBySourceURL(feed.SourceURL)
	if err != nil {
		t.Fatalf("GetFeedBySourceURL failed: %v", err)
	}
	if got.ID != "user1" {
		t.Errorf("Expected user1, got %q", got.ID)
	}

	if _, err := repo.GetFeedBySourceURL("https://nope.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFeed(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	feed := sampleFeed("user1")
	if err := repo.InsertFeed(feed); err != nil {
		t.Fatal(err)
	}

	feed.Title = "Updated title"
	feed.PostCount = 7
	feed.LastUpdatedAt = feed.LastUpdatedAt.Add(time.Hour)
	if err := repo.UpdateFeed(feed); err != nil {
		t.Fatalf("UpdateFeed failed: %v", err)
	}

	got, err := repo.GetFeed("user1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Updated title" || got.PostCount != 7 {
		t.Errorf("Update not persisted: %+v", got)
	}
}

func TestUpdateFeedNotFound(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	if err := repo.UpdateFeed(sampleFeed("ghost")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteFeed(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	if err := repo.InsertFeed(sampleFeed("user1")); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteFeed("user1"); err != nil {
		t.Fatalf("DeleteFeed failed: %v", err)
	}
	if _, err := repo.GetFeed("user1"); !errors.Is(err, ErrNotFound) {
		t.Error("Feed should be gone after delete")
	}
	if err := repo.DeleteFeed("user1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Second delete should report ErrNotFound, got %v", err)
	}
}

func TestGetFeedsUpdatedBefore(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	now := time.Now().UTC().Truncate(time.Second)

	old := sampleFeed("old")
	old.LastUpdatedAt = now.AddDate(0, 0, -31)
	fresh := sampleFeed("fresh")
	fresh.LastUpdatedAt = now.AddDate(0, 0, -1)

	if err := repo.InsertFeed(old); err != nil {
		t.Fatal(err)
	}
	if err := repo.InsertFeed(fresh); err != nil {
		t.Fatal(err)
	}

	stale, err := repo.GetFeedsUpdatedBefore(now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("GetFeedsUpdatedBefore failed: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != "old" {
		t.Errorf("Expected only the old feed, got %v", stale)
	}
}

func TestGetStats(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	a := sampleFeed("a")
	b := sampleFeed("b")
	b.Platform = "facebook"
	b.PostCount = 5

	if err := repo.InsertFeed(a); err != nil {
		t.Fatal(err)
	}
	if err := repo.InsertFeed(b); err != nil {
		t.Fatal(err)
	}

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalFeeds != 2 {
		t.Errorf("Expected 2 feeds, got %d", stats.TotalFeeds)
	}
	if stats.ActiveFeeds != 2 {
		t.Errorf("Expected 2 active feeds, got %d", stats.ActiveFeeds)
	}
	if stats.TotalPosts != 8 {
		t.Errorf("Expected 8 posts, got %d", stats.TotalPosts)
	}
	if stats.ByPlatform["instagram"] != 1 || stats.ByPlatform["facebook"] != 1 {
		t.Errorf("Unexpected platform counts %v", stats.ByPlatform)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalFeeds != 0 || stats.TotalPosts != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestSearchFeeds(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	a := sampleFeed("travelblog")
	a.Title = "Feed for travelblog on Instagram"
	b := sampleFeed("cooking")
	b.Title = "Feed for cooking on Instagram"

	if err := repo.InsertFeed(a); err != nil {
		t.Fatal(err)
	}
	if err := repo.InsertFeed(b); err != nil {
		t.Fatal(err)
	}

	found, err := repo.SearchFeeds("travel")
	if err != nil {
		t.Fatalf("SearchFeeds failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != "travelblog" {
		t.Errorf("Expected travelblog hit, got %v", found)
	}

	none, err := repo.SearchFeeds("zzz")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no hits, got %v", none)
	}
}

func TestGetAllFeedsOrder(t *testing.T) {
	repo := NewFeedRepository(setupTestDB(t))

	older := sampleFeed("older")
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	newer := sampleFeed("newer")
	newer.CreatedAt = time.Now().UTC().Truncate(time.Second)

	if err := repo.InsertFeed(older); err != nil {
		t.Fatal(err)
	}
	if err := repo.InsertFeed(newer); err != nil {
		t.Fatal(err)
	}

	feeds, err := repo.GetAllFeeds()
	if err != nil {
		t.Fatalf("GetAllFeeds failed: %v", err)
	}
	if len(feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(feeds))
	}
	if feeds[0].ID != "newer" {
		t.Errorf("Expected newest first, got %q", feeds[0].ID)
	}
}
