// Package scraper turns a profile or page URL into source metadata and
// canonical posts. The router picks a platform by host, each platform
// has its own extractor, and all extractors converge on the same Post
// model so nothing downstream ever sees platform-specific shapes.
package scraper

import (
	"context"
	"fmt"
)

// Scraper routes a URL to the extractor for its platform.
type Scraper struct {
	facebook  Extractor
	instagram Extractor
	twitter   Extractor
	youtube   Extractor
	website   Extractor
}

func New(client *Client) *Scraper {
	return &Scraper{
		facebook:  NewFacebookExtractor(client),
		instagram: NewInstagramExtractor(client),
		twitter:   NewTwitterExtractor(client),
		youtube:   NewYouTubeExtractor(client),
		website:   NewWebsiteExtractor(client),
	}
}

// Scrape detects the platform for the URL and runs its extractor.
// Platforms without an extractor yield ErrUnsupportedPlatform.
func (s *Scraper) Scrape(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error) {
	if maxPosts <= 0 {
		maxPosts = 10
	}

	platform := Detect(url)

	var extractor Extractor
	switch platform {
	case PlatformFacebook:
		extractor = s.facebook
	case PlatformInstagram:
		extractor = s.instagram
	case PlatformTwitter:
		extractor = s.twitter
	case PlatformYouTube:
		extractor = s.youtube
	case PlatformGeneric:
		extractor = s.website
	default:
		return SourceMetadata{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}

	return extractor.Extract(ctx, url, maxPosts)
}
