package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"socialrss/app/textutil"
)

// Content containers tried in priority order before falling back to
// the stripped document body.
var contentSelectors = []string{
	"article",
	".post-content",
	".entry-content",
	".content",
	".main-content",
	"#content",
	".article-body",
	".post-body",
}

const maxWebsiteImages = 5

// WebsiteExtractor synthesizes a single canonical post from an
// arbitrary web page.
type WebsiteExtractor struct {
	client *Client
}

func NewWebsiteExtractor(client *Client) *WebsiteExtractor {
	return &WebsiteExtractor{client: client}
}

func (e *WebsiteExtractor) Extract(ctx context.Context, rawURL string, maxPosts int) (SourceMetadata, []Post, error) {
	data, err := e.client.Get(ctx, rawURL, nil)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return SourceMetadata{}, nil, fmt.Errorf("failed to parse page %s: %w", rawURL, err)
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return SourceMetadata{}, nil, fmt.Errorf("invalid page URL %s: %w", rawURL, err)
	}

	fetchedAt := time.Now().UTC()
	meta := pageMeta(doc)

	metadata := SourceMetadata{
		Platform:  PlatformGeneric.DisplayName(),
		Handle:    base.Host,
		SourceURL: rawURL,
		FetchedAt: fetchedAt,
	}

	text := e.mainContentText(doc, rawURL, data)
	if text == "" {
		return SourceMetadata{}, nil, fmt.Errorf("no content could be extracted from %s", rawURL)
	}

	post := Post{
		ID:          derivedID(rawURL, 0),
		Title:       meta["title"],
		Text:        text,
		PublishedAt: &fetchedAt,
		PostURL:     rawURL,
		AuthorName:  base.Host,
		Images:      pageImages(doc, base, maxWebsiteImages),
		Metrics:     map[string]int{},
	}
	post.Summary = textutil.Summarize(text, 200)

	return metadata, []Post{post}, nil
}

// mainContentText picks the best available main-content block: the
// first matching known container, then a readability pass, then the
// body with boilerplate elements removed.
func (e *WebsiteExtractor) mainContentText(doc *goquery.Document, pageURL string, raw []byte) string {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := textutil.CollapseWhitespace(sel.Text()); text != "" {
				return text
			}
		}
	}

	if article, err := readability.FromReader(bytes.NewReader(raw), mustParse(pageURL)); err == nil {
		if text := textutil.CollapseWhitespace(article.TextContent); text != "" {
			return text
		}
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, nav, header, footer, aside").Remove()
	return textutil.CollapseWhitespace(body.Text())
}

func pageMeta(doc *goquery.Document) map[string]string {
	meta := map[string]string{}

	if title := textutil.CollapseWhitespace(doc.Find("title").First().Text()); title != "" {
		meta["title"] = title
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && desc != "" {
		meta["description"] = desc
	}

	doc.Find(`meta[property^="og:"]`).Each(func(_ int, sel *goquery.Selection) {
		property, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		name := strings.TrimPrefix(property, "og:")
		if name != "" && content != "" {
			meta["og_"+name] = content
		}
	})

	if meta["title"] == "" {
		meta["title"] = meta["og_title"]
	}

	return meta
}

func pageImages(doc *goquery.Document, base *url.URL, max int) []string {
	var images []string
	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			return true
		}

		ref, err := url.Parse(src)
		if err != nil {
			return true
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme == "" || abs.Host == "" {
			return true
		}

		images = append(images, abs.String())
		return len(images) < max
	})
	return images
}

func mustParse(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &url.URL{}
	}
	return u
}
