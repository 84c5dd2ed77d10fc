package feed

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialrss/app/cfg"
	"socialrss/app/scraper"
	"socialrss/app/textutil"
)

const (
	handlePlaceholder   = "user"
	platformPlaceholder = "social media"
	authorPlaceholder   = "unknown"
	noContentText       = "no content available"

	entryTitleMax   = 100
	maxInlineImages = 3
	maxCategories   = 5
)

// Tag browse target for hashtag links in entry HTML.
var hashtagLinkRe = regexp.MustCompile(`#(\w+)`)

const hashtagLinkTemplate = `<a href="https://www.instagram.com/explore/tags/$1/">#$1</a>`

type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Run builds a feed document from one source's metadata and posts.
// Entry order follows post order. A post that cannot be mapped is
// skipped; the call fails only when the metadata carries no source URL.
func (s *Synthesizer) Run(meta scraper.SourceMetadata, posts []scraper.Post) (*Document, error) {
	if meta.SourceURL == "" {
		return nil, fmt.Errorf("source metadata has no URL")
	}

	handle := cmp.Or(meta.Handle, handlePlaceholder)
	platform := cmp.Or(meta.Platform, platformPlaceholder)
	builtAt := time.Now().UTC()

	doc := &Document{
		Title:       fmt.Sprintf("Feed for %s on %s", handle, platform),
		Description: fmt.Sprintf("Latest posts from %s on %s", handle, platform),
		SourceLink:  meta.SourceURL,
		Language:    cfg.Get().FeedLanguage,
		Generator:   fmt.Sprintf("SocialRSS/%s", cfg.Get().Version),
		BuiltAt:     builtAt,
		Entries:     make([]Entry, 0, len(posts)),
	}

	for _, post := range posts {
		if post.ID == "" && post.Text == "" && post.PostURL == "" {
			continue
		}
		doc.Entries = append(doc.Entries, s.entry(post, platform, builtAt))
	}

	return doc, nil
}

func (s *Synthesizer) entry(post scraper.Post, platform string, builtAt time.Time) Entry {
	entry := Entry{
		Title:       s.entryTitle(post, platform),
		Link:        post.PostURL,
		Description: s.entryDescription(post),
		ContentHTML: s.entryHTML(post),
		Author:      cmp.Or(post.AuthorName, authorPlaceholder),
		Categories:  s.entryCategories(post, platform),
		Enclosures:  s.entryEnclosures(post),
	}

	if post.PostURL != "" {
		entry.GUID = post.PostURL
		entry.GUIDIsPermalink = true
	} else {
		entry.GUID = uuid.NewString()
	}

	// Without a source timestamp the synthesis time is the last
	// resort, so such entries get a new pubDate on every refresh.
	if post.PublishedAt != nil {
		entry.PubDate = post.PublishedAt.UTC()
	} else {
		entry.PubDate = builtAt
	}

	return entry
}

// entryTitle derivation, first matching rule wins: explicit title,
// summary, cleaned text, then a generic placeholder.
func (s *Synthesizer) entryTitle(post scraper.Post, platform string) string {
	if post.Title != "" {
		return post.Title
	}

	if post.Summary != "" {
		return titleCut(post.Summary)
	}

	clean := textutil.StripLinks(textutil.StripHashtags(post.Text))
	if clean != "" {
		return titleCut(clean)
	}

	author := cmp.Or(post.AuthorName, handlePlaceholder)
	return fmt.Sprintf("New post from %s on %s", author, platform)
}

// titleCut takes the first sentence when one ends within the title
// limit, otherwise soft-truncates.
func titleCut(text string) string {
	limit := entryTitleMax
	if len(text) < limit {
		limit = len(text)
	}
	for i := 0; i < limit; i++ {
		switch text[i] {
		case '.', '!', '?':
			return strings.TrimSpace(text[:i+1])
		}
	}
	return textutil.Summarize(text, entryTitleMax)
}

func (s *Synthesizer) entryDescription(post scraper.Post) string {
	var parts []string

	if post.Text != "" {
		parts = append(parts, post.Text)
	}

	for _, metric := range []struct{ key, label string }{
		{scraper.MetricLikes, "likes"},
		{scraper.MetricComments, "comments"},
		{scraper.MetricShares, "shares"},
	} {
		if n := post.Metrics[metric.key]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, metric.label))
		}
	}

	if len(parts) == 0 {
		return noContentText
	}
	return strings.Join(parts, " | ")
}

func (s *Synthesizer) entryHTML(post scraper.Post) string {
	var b strings.Builder

	if post.Text != "" {
		linked := hashtagLinkRe.ReplaceAllString(post.Text, hashtagLinkTemplate)
		fmt.Fprintf(&b, "<p>%s</p>", linked)
	}

	if len(post.Images) > 0 {
		b.WriteString(`<div class="images">`)
		for i, img := range post.Images {
			if i >= maxInlineImages {
				break
			}
			fmt.Fprintf(&b, `<img src="%s" alt="post image" style="max-width: 100%%; margin: 5px;">`, img)
		}
		b.WriteString("</div>")
	}

	var interactions []string
	for _, metric := range []struct{ key, label string }{
		{scraper.MetricLikes, "likes"},
		{scraper.MetricComments, "comments"},
		{scraper.MetricShares, "shares"},
	} {
		if n := post.Metrics[metric.key]; n > 0 {
			interactions = append(interactions, fmt.Sprintf("%d %s", n, metric.label))
		}
	}
	if len(interactions) > 0 {
		fmt.Fprintf(&b, "<p><small>%s</small></p>", strings.Join(interactions, " | "))
	}

	if post.PostURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">View original post</a></p>`, post.PostURL)
	}

	if b.Len() == 0 {
		return fmt.Sprintf("<p>%s</p>", noContentText)
	}
	return b.String()
}

func (s *Synthesizer) entryCategories(post scraper.Post, platform string) []string {
	tags := textutil.Hashtags(post.Text)
	if len(tags) > maxCategories {
		tags = tags[:maxCategories]
	}
	return append(tags, platform)
}

func (s *Synthesizer) entryEnclosures(post scraper.Post) []Enclosure {
	var enclosures []Enclosure

	if len(post.Images) > 0 {
		enclosures = append(enclosures, Enclosure{
			URL:  post.Images[0],
			Type: enclosureImageType,
		})
	}

	if post.VideoURL != "" {
		enclosures = append(enclosures, Enclosure{
			URL:  post.VideoURL,
			Type: enclosureVideoType,
		})
	}

	return enclosures
}
