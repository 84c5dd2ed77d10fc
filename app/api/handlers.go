package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"socialrss/app/cfg"
	"socialrss/app/database"
	"socialrss/app/scraper"
	"socialrss/app/tasks"
)

func NewHandler(manager FeedManagerInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		manager:   manager,
		scheduler: scheduler,
	}
}

// CreateFeed registers a feed for a source URL. Repeating the call
// with the same URL refreshes the existing feed, so the endpoint is
// safe to retry.
func (h *Handler) CreateFeed(c *gin.Context) {
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if scraper.Detect(req.URL).Capability() == scraper.CapabilityUnsupported {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "Unsupported platform",
			"platforms": scraper.SupportedPlatforms(),
		})
		return
	}

	record, created, err := h.manager.CreateOrUpdate(c.Request.Context(), req.URL, req.MaxPosts)
	if err != nil {
		slog.Error("Feed creation failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to build feed", "details": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, toFeedResponse(*record))
}

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.manager.List()
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": lo.Map(feeds, func(feed database.Feed, _ int) feedResponse {
			return toFeedResponse(feed)
		}),
		"total": len(feeds),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	id := c.Param("id")

	record, err := h.manager.Get(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toFeedResponse(*record))
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id := c.Param("id")

	err := h.manager.Delete(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}
	if err != nil {
		slog.Error("Feed deletion failed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// UpdateFeed enqueues a background refresh instead of rebuilding
// inline, so slow sources do not tie up the request.
func (h *Handler) UpdateFeed(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.manager.Get(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return
		}
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	manager, ok := h.manager.(tasks.FeedManagerInterface)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh not available"})
		return
	}

	task := tasks.NewRefreshFeedTask(id, manager)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "feed", id, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue refresh task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

// GetFeedXML serves the rendered document. The id may carry a ".xml"
// suffix so the URL works in feed readers that expect one.
func (h *Handler) GetFeedXML(c *gin.Context) {
	id := strings.TrimSuffix(c.Param("id"), ".xml")

	record, err := h.manager.Get(id)
	if errors.Is(err, database.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	content, err := h.manager.Document(id)
	if err != nil {
		slog.Error("Feed document unavailable", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-Feed-Posts", strconv.Itoa(record.PostCount))
	c.Header("X-Last-Updated", record.LastUpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, content)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.manager.Stats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_feeds":  stats.TotalFeeds,
		"active_feeds": stats.ActiveFeeds,
		"total_posts":  stats.TotalPosts,
		"by_platform":  stats.ByPlatform,
	})
}

func (h *Handler) SearchFeeds(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}

	feeds, err := h.manager.Search(query)
	if err != nil {
		slog.Error("Database error", "operation", "search_feeds", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"feeds": lo.Map(feeds, func(feed database.Feed, _ int) feedResponse {
			return toFeedResponse(feed)
		}),
		"total": len(feeds),
	})
}

func (h *Handler) GetPlatforms(c *gin.Context) {
	platforms := lo.Map(scraper.SupportedPlatforms(), func(info scraper.PlatformInfo, _ int) gin.H {
		return gin.H{
			"name":       info.Name,
			"display":    info.Display,
			"capability": info.Capability,
		}
	})

	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"version":   cfg.Get().Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if stats, err := h.manager.Stats(); err == nil {
		health["feeds"] = stats.TotalFeeds
	}

	c.JSON(http.StatusOK, health)
}

func toFeedResponse(record database.Feed) feedResponse {
	return feedResponse{
		ID:             record.ID,
		SourceURL:      record.SourceURL,
		Platform:       record.Platform,
		Capability:     string(scraper.Platform(record.Platform).Capability()),
		Title:          record.Title,
		Description:    record.Description,
		MaxPosts:       record.MaxPosts,
		UpdateInterval: record.UpdateIntervalMinutes,
		PostCount:      record.PostCount,
		Status:         record.Status,
		FeedURL:        feedURL(record.ID),
		CreatedAt:      record.CreatedAt,
		LastUpdatedAt:  record.LastUpdatedAt,
	}
}

func feedURL(id string) string {
	base := cfg.Get().BaseUrl
	if base == "" {
		base = "http://localhost:" + cfg.Get().Port
	}
	return fmt.Sprintf("%s/feeds/%s.xml", base, id)
}
