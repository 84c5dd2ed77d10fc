package scraper

import (
	"net/url"
	"strings"
)

// Platform identifies the source family a URL belongs to.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
	PlatformGeneric   Platform = "generic"
	PlatformUnknown   Platform = "unknown"
)

// Capability describes how much a platform extractor can deliver.
type Capability string

const (
	// CapabilityFullPosts means the extractor produces post-level entries.
	CapabilityFullPosts Capability = "full_post_extraction"
	// CapabilityMetadataOnly means the extractor resolves source metadata
	// but the platform requires a dedicated API for post content.
	CapabilityMetadataOnly Capability = "metadata_only"
	// CapabilityUnsupported means no extractor exists for the platform.
	CapabilityUnsupported Capability = "unsupported"
)

// Detect classifies a URL into a platform by inspecting its host.
// It never fails: unparseable input or a missing host yields
// PlatformUnknown, any other parseable URL yields PlatformGeneric.
func Detect(rawURL string) Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return PlatformUnknown
	}

	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "facebook.com") || strings.Contains(host, "fb.com"):
		return PlatformFacebook
	case strings.Contains(host, "instagram.com") || strings.Contains(host, "instagr.am"):
		return PlatformInstagram
	case strings.Contains(host, "twitter.com") || strings.Contains(host, "x.com"):
		return PlatformTwitter
	case strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(host, "linkedin.com"):
		return PlatformLinkedIn
	case strings.Contains(host, "tiktok.com"):
		return PlatformTikTok
	default:
		return PlatformGeneric
	}
}

// Capability reports the extraction capability for the platform.
func (p Platform) Capability() Capability {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformGeneric:
		return CapabilityFullPosts
	case PlatformTwitter, PlatformYouTube:
		return CapabilityMetadataOnly
	default:
		return CapabilityUnsupported
	}
}

// DisplayName returns the human readable platform name used in feed
// titles and categories.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTwitter:
		return "Twitter"
	case PlatformYouTube:
		return "YouTube"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	case PlatformGeneric:
		return "Website"
	default:
		return "Unknown"
	}
}

// PlatformInfo is the enumeration entry exposed to API callers.
type PlatformInfo struct {
	Name       string     `json:"name"`
	Display    string     `json:"display_name"`
	Capability Capability `json:"capability"`
}

// SupportedPlatforms enumerates every platform the router knows about,
// including the metadata-only and unsupported ones.
func SupportedPlatforms() []PlatformInfo {
	platforms := []Platform{
		PlatformFacebook,
		PlatformInstagram,
		PlatformTwitter,
		PlatformYouTube,
		PlatformLinkedIn,
		PlatformTikTok,
		PlatformGeneric,
	}

	infos := make([]PlatformInfo, 0, len(platforms))
	for _, p := range platforms {
		infos = append(infos, PlatformInfo{
			Name:       string(p),
			Display:    p.DisplayName(),
			Capability: p.Capability(),
		})
	}
	return infos
}
