package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"socialrss/app/textutil"
)

// Patterns are ordered most specific first so numeric page and profile
// ids win over the vanity-name catch-all.
var facebookPagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`facebook\.com/pages/[^/]+/(\d+)`),
	regexp.MustCompile(`facebook\.com/profile\.php\?id=(\d+)`),
	regexp.MustCompile(`facebook\.com/([^/?]+)`),
	regexp.MustCompile(`fb\.com/([^/?]+)`),
}

// FacebookPageName resolves a page name, vanity name, or numeric
// profile id from a Facebook URL.
func FacebookPageName(rawURL string) (string, error) {
	for _, pattern := range facebookPagePatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			name := strings.SplitN(match[1], "?", 2)[0]
			name = strings.TrimSuffix(name, "/")
			if name != "" {
				return name, nil
			}
		}
	}
	return "", ErrUnresolvableIdentifier
}

// FacebookSource supplies raw profile and post payloads for a page.
// The default implementation scrapes the mobile site; tests and
// API-backed deployments can substitute their own.
type FacebookSource interface {
	Profile(ctx context.Context, pageName string) (RawPayload, error)
	Posts(ctx context.Context, pageName string, pages int) ([]RawPayload, error)
}

// postPageWindow bounds how many raw post pages one extraction walks.
const postPageWindow = 3

type FacebookExtractor struct {
	source FacebookSource
}

func NewFacebookExtractor(client *Client) *FacebookExtractor {
	return &FacebookExtractor{source: &facebookMobileSource{client: client}}
}

// NewFacebookExtractorWithSource wires a custom raw payload source.
func NewFacebookExtractorWithSource(source FacebookSource) *FacebookExtractor {
	return &FacebookExtractor{source: source}
}

func (e *FacebookExtractor) Extract(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error) {
	pageName, err := FacebookPageName(url)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	metadata := SourceMetadata{
		Platform:  PlatformFacebook.DisplayName(),
		Handle:    pageName,
		SourceURL: url,
		FetchedAt: time.Now().UTC(),
	}

	// Profile lookup is best effort, a failure here must not fail the
	// whole extraction.
	if profile, err := e.source.Profile(ctx, pageName); err != nil {
		slog.Warn("Facebook profile lookup failed", "page", pageName, "error", err)
	} else if name := profile.Str("name", "title"); name != "" {
		metadata.Handle = name
	}

	raw, err := e.source.Posts(ctx, pageName, postPageWindow)
	if err != nil {
		return SourceMetadata{}, nil, fmt.Errorf("failed to fetch posts for %s: %w", pageName, err)
	}

	posts := make([]Post, 0, maxPosts)
	for i, payload := range raw {
		if len(posts) >= maxPosts {
			break
		}

		post, err := e.mapPost(url, i, payload)
		if err != nil {
			slog.Warn("Skipping unmappable Facebook post", "page", pageName, "position", i, "error", err)
			continue
		}
		posts = append(posts, post)
	}

	return metadata, posts, nil
}

func (e *FacebookExtractor) mapPost(sourceURL string, position int, payload RawPayload) (Post, error) {
	text := textutil.StripLinks(payload.Str("text", "post_text"))
	if text == "" && payload.Str("post_id", "id") == "" {
		return Post{}, fmt.Errorf("post has neither text nor id")
	}

	id := payload.Str("post_id", "id")
	if id == "" {
		id = derivedID(sourceURL, position)
	}

	post := Post{
		ID:         id,
		Text:       text,
		PostURL:    payload.Str("post_url"),
		AuthorName: payload.Str("username", "author"),
		Images:     payload.Strs("images"),
		VideoURL:   payload.Str("video", "video_url"),
		Metrics:    map[string]int{},
	}

	if text != "" {
		post.Summary = textutil.Summarize(text, 150)
	}

	post.PublishedAt = payload.Time("time", "timestamp")

	for key, names := range map[string][]string{
		MetricLikes:    {"likes", "likes_count"},
		MetricComments: {"comments", "comments_count"},
		MetricShares:   {"shares", "shares_count"},
	} {
		if payload.Has(names...) {
			post.Metrics[key] = payload.Int(names...)
		}
	}

	return post, nil
}

// facebookMobileSource scrapes the mobile site for public page posts.
// Coverage is best effort: the markup changes often and per-post
// failures are tolerated upstream.
type facebookMobileSource struct {
	client *Client
}

func (s *facebookMobileSource) Profile(ctx context.Context, pageName string) (RawPayload, error) {
	doc, err := s.client.Document(ctx, "https://m.facebook.com/"+pageName)
	if err != nil {
		return nil, err
	}

	payload := RawPayload{}
	if name, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		payload["name"] = name
	} else {
		payload["name"] = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		payload["description"] = desc
	}
	return payload, nil
}

func (s *facebookMobileSource) Posts(ctx context.Context, pageName string, pages int) ([]RawPayload, error) {
	doc, err := s.client.Document(ctx, "https://m.facebook.com/"+pageName)
	if err != nil {
		return nil, err
	}

	var payloads []RawPayload
	doc.Find(`article, div[role="article"]`).Each(func(i int, sel *goquery.Selection) {
		payload := RawPayload{
			"text":     sel.Text(),
			"username": pageName,
		}

		if href, ok := sel.Find(`a[href*="story.php"], a[href*="/posts/"]`).First().Attr("href"); ok {
			payload["post_url"] = absoluteURL("https://m.facebook.com", href)
		}

		var images []string
		sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && strings.HasPrefix(src, "http") {
				images = append(images, src)
			}
		})
		if len(images) > 0 {
			payload["images"] = images
		}

		if ts, ok := sel.Find("abbr[data-utime]").Attr("data-utime"); ok {
			payload["time"] = ts
		}

		payloads = append(payloads, payload)
	})

	return payloads, nil
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}
