package scraper

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"socialrss/app/textutil"
)

// Twitter and YouTube expose no post content without a dedicated API.
// Their extractors resolve source metadata only and return an empty
// post list, which is a deliberate degraded mode rather than an error:
// the feed can still be created.
const apiRequiredNote = "posts require a dedicated API"

var twitterUserPatterns = []*regexp.Regexp{
	regexp.MustCompile(`twitter\.com/([^/?]+)`),
	regexp.MustCompile(`x\.com/([^/?]+)`),
}

// TwitterUsername resolves a username from a Twitter/X profile URL.
func TwitterUsername(rawURL string) (string, error) {
	for _, pattern := range twitterUserPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			username := strings.SplitN(match[1], "?", 2)[0]
			if username != "" {
				return username, nil
			}
		}
	}
	return "", ErrUnresolvableIdentifier
}

type TwitterExtractor struct {
	client *Client
}

func NewTwitterExtractor(client *Client) *TwitterExtractor {
	return &TwitterExtractor{client: client}
}

func (e *TwitterExtractor) Extract(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error) {
	username, err := TwitterUsername(url)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	metadata := SourceMetadata{
		Platform:  PlatformTwitter.DisplayName(),
		Handle:    username,
		SourceURL: url,
		FetchedAt: time.Now().UTC(),
		Note:      apiRequiredNote,
	}

	doc, err := e.client.Document(ctx, url)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	if name := jsonLDPersonName(doc); name != "" {
		metadata.Handle = name
	}

	return metadata, []Post{}, nil
}

// jsonLDPersonName scans embedded JSON-LD blocks for a Person record.
func jsonLDPersonName(doc *goquery.Document) string {
	var name string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data map[string]any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}
		if t, _ := data["@type"].(string); t != "Person" {
			return true
		}
		name, _ = data["name"].(string)
		return name == ""
	})
	return name
}

type YouTubeExtractor struct {
	client *Client
}

func NewYouTubeExtractor(client *Client) *YouTubeExtractor {
	return &YouTubeExtractor{client: client}
}

func (e *YouTubeExtractor) Extract(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error) {
	metadata := SourceMetadata{
		Platform:  PlatformYouTube.DisplayName(),
		Handle:    "channel",
		SourceURL: url,
		FetchedAt: time.Now().UTC(),
		Note:      apiRequiredNote,
	}

	doc, err := e.client.Document(ctx, url)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	if title := textutil.CollapseWhitespace(doc.Find("title").First().Text()); title != "" {
		metadata.Handle = strings.TrimSuffix(title, " - YouTube")
	}

	return metadata, []Post{}, nil
}
