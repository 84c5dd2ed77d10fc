package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Post is the canonical representation every extractor converges to.
// Fields a source cannot provide stay zero valued; Text is plain text
// with hashtags preserved as #word tokens.
type Post struct {
	ID          string
	Title       string
	Summary     string
	Text        string
	PublishedAt *time.Time
	PostURL     string
	AuthorName  string
	Images      []string
	VideoURL    string
	Metrics     map[string]int
}

// Metric keys populated by extractors.
const (
	MetricLikes    = "likes"
	MetricComments = "comments"
	MetricShares   = "shares"
)

// SourceMetadata describes the source a set of posts was extracted
// from. Note carries an explanation when the platform only supports
// metadata-level extraction.
type SourceMetadata struct {
	Platform  string
	Handle    string
	SourceURL string
	FetchedAt time.Time
	Note      string
}

// Extractor converts one platform's raw fetched content into canonical
// posts plus source metadata.
type Extractor interface {
	Extract(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error)
}

// derivedID synthesizes a stable post identifier from the source URL
// and the post's position, for sources without native post ids.
// Unique within one source fetch, reproducible across fetches.
func derivedID(sourceURL string, position int) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return fmt.Sprintf("post_%s_%d", hex.EncodeToString(sum[:6]), position)
}
