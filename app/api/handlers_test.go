package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialrss/app/cfg"
	"socialrss/app/database"
	"socialrss/app/tasks"
)

func setupTestCfg() {
	cfg.Set(&cfg.Cfg{
		Port:            "8080",
		FeedLanguage:    "en",
		AuthorName:      "Social RSS",
		AuthorEmail:     "feeds@localhost",
		DefaultMaxPosts: 10,
		StaleAgeDays:    30,
		Version:         "test",
	})
}

// fakeManager satisfies both the API and the task manager interfaces.
type fakeManager struct {
	feeds    map[string]*database.Feed
	document string
	created  bool
	failWith error
}

func newFakeManager() *fakeManager {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeManager{
		feeds: map[string]*database.Feed{
			"feedid01": {
				ID:            "feedid01",
				SourceURL:     "https://www.instagram.com/someuser",
				Platform:      "instagram",
				Title:         "Feed for someuser on Instagram",
				MaxPosts:      10,
				PostCount:     2,
				CreatedAt:     now,
				LastUpdatedAt: now,
			},
		},
		document: `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel></channel></rss>`,
	}
}

func (f *fakeManager) CreateOrUpdate(ctx context.Context, sourceURL string, maxPosts int) (*database.Feed, bool, error) {
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	feed := &database.Feed{ID: "newfeed1", SourceURL: sourceURL, Platform: "instagram", MaxPosts: maxPosts}
	f.feeds[feed.ID] = feed
	f.created = true
	return feed, true, nil
}

func (f *fakeManager) Get(id string) (*database.Feed, error) {
	feed, ok := f.feeds[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return feed, nil
}

func (f *fakeManager) List() ([]database.Feed, error) {
	var feeds []database.Feed
	for _, feed := range f.feeds {
		feeds = append(feeds, *feed)
	}
	return feeds, nil
}

func (f *fakeManager) Delete(id string) error {
	if _, ok := f.feeds[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.feeds, id)
	return nil
}

func (f *fakeManager) Document(id string) (string, error) {
	if _, ok := f.feeds[id]; !ok {
		return "", database.ErrNotFound
	}
	return f.document, nil
}

func (f *fakeManager) Stats() (*database.FeedStats, error) {
	return &database.FeedStats{
		TotalFeeds: len(f.feeds),
		TotalPosts: 2,
		ByPlatform: map[string]int{"instagram": len(f.feeds)},
	}, nil
}

func (f *fakeManager) Search(query string) ([]database.Feed, error) {
	var found []database.Feed
	for _, feed := range f.feeds {
		if strings.Contains(feed.SourceURL, query) {
			found = append(found, *feed)
		}
	}
	return found, nil
}

func (f *fakeManager) Refresh(ctx context.Context, id string) (*database.Feed, error) {
	return f.Get(id)
}

func (f *fakeManager) SweepStale(maxAgeDays int) (int, error) {
	return 0, nil
}

func newTestServer(manager *fakeManager, apiKey string) http.Handler {
	setupTestCfg()
	scheduler := &fakeScheduler{}
	return NewServer(NewHandler(manager, scheduler), apiKey)
}

type fakeScheduler struct {
	enqueued int
}

func (f *fakeScheduler) Start() {}
func (f *fakeScheduler) Stop()  {}
func (f *fakeScheduler) EnqueueTask(task tasks.TaskInterface) error {
	f.enqueued++
	return nil
}

func TestGetFeedXML(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/feeds/feedid01.xml", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/rss+xml") {
		t.Errorf("Expected RSS content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<rss") {
		t.Error("Expected RSS body")
	}
	if w.Header().Get("X-Feed-Posts") != "2" {
		t.Errorf("Expected post count header, got %q", w.Header().Get("X-Feed-Posts"))
	}
}

func TestGetFeedXMLWithoutSuffix(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/feeds/feedid01", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestGetFeedXMLNotFound(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/feeds/missing.xml", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
}

func TestCreateFeed(t *testing.T) {
	manager := newFakeManager()
	server := newTestServer(manager, "")

	body := strings.NewReader(`{"url": "https://www.instagram.com/newuser", "max_posts": 5}`)
	req := httptest.NewRequest("POST", "/api/feeds", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !manager.created {
		t.Error("Expected manager.CreateOrUpdate to be called")
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp["id"] != "newfeed1" {
		t.Errorf("Expected feed id in response, got %v", resp["id"])
	}
	if feedURL, _ := resp["feed_url"].(string); !strings.HasSuffix(feedURL, "/feeds/newfeed1.xml") {
		t.Errorf("Expected feed URL in response, got %v", resp["feed_url"])
	}
}

func TestCreateFeedMissingURL(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("POST", "/api/feeds", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestCreateFeedUnsupportedPlatform(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	body := strings.NewReader(`{"url": "https://www.linkedin.com/in/someone"}`)
	req := httptest.NewRequest("POST", "/api/feeds", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
}

func TestListFeeds(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/api/feeds", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Feeds []feedResponse `json:"feeds"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp.Total != 1 || len(resp.Feeds) != 1 {
		t.Errorf("Expected one feed, got %+v", resp)
	}
	if resp.Feeds[0].Capability != "full_post_extraction" {
		t.Errorf("Expected capability in response, got %q", resp.Feeds[0].Capability)
	}
}

func TestDeleteFeed(t *testing.T) {
	manager := newFakeManager()
	server := newTestServer(manager, "")

	req := httptest.NewRequest("DELETE", "/api/feeds/feedid01", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if _, ok := manager.feeds["feedid01"]; ok {
		t.Error("Feed should be deleted")
	}

	req = httptest.NewRequest("DELETE", "/api/feeds/feedid01", nil)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for repeat delete, got %d", w.Code)
	}
}

func TestUpdateFeedEnqueues(t *testing.T) {
	setupTestCfg()
	manager := newFakeManager()
	scheduler := &fakeScheduler{}
	server := NewServer(NewHandler(manager, scheduler), "")

	req := httptest.NewRequest("POST", "/api/feeds/feedid01/update", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if scheduler.enqueued != 1 {
		t.Errorf("Expected one enqueued task, got %d", scheduler.enqueued)
	}

	req = httptest.NewRequest("POST", "/api/feeds/missing/update", nil)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown feed, got %d", w.Code)
	}
}

func TestStats(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "total_feeds") {
		t.Errorf("Expected stats payload, got %s", w.Body.String())
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/api/search", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/api/search?q=someuser", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "feedid01") {
		t.Errorf("Expected a search hit, got %s", w.Body.String())
	}
}

func TestPlatforms(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/api/platforms", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	for _, expected := range []string{"facebook", "metadata_only", "unsupported"} {
		if !strings.Contains(w.Body.String(), expected) {
			t.Errorf("Expected %q in platform listing", expected)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(newFakeManager(), "")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("Expected ok status, got %s", w.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	server := newTestServer(newFakeManager(), "secret")

	// No key
	req := httptest.NewRequest("GET", "/api/feeds", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without key, got %d", w.Code)
	}

	// Wrong key
	req = httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 with wrong key, got %d", w.Code)
	}

	// Header key
	req = httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with key, got %d", w.Code)
	}

	// Bearer token
	req = httptest.NewRequest("GET", "/api/feeds", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with bearer token, got %d", w.Code)
	}

	// Feed documents stay public
	req = httptest.NewRequest("GET", "/feeds/feedid01.xml", nil)
	w = httptest.NewRecorder()
	server.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected public feed access, got %d", w.Code)
	}
}
