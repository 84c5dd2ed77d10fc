package feed

import (
	"time"
)

// Document is the complete serializable feed: channel-level fields
// plus one entry per canonical post, in extractor order.
type Document struct {
	Title       string
	Description string
	SourceLink  string
	SelfLink    string
	Language    string
	Generator   string
	BuiltAt     time.Time
	Entries     []Entry
}

type Entry struct {
	Title           string
	Link            string
	GUID            string
	GUIDIsPermalink bool
	Description     string
	ContentHTML     string
	PubDate         time.Time
	Author          string
	Categories      []string
	Enclosures      []Enclosure
}

type Enclosure struct {
	URL    string
	Type   string
	Length int64
}

// Enclosure MIME types. Upstream sources do not report them, so the
// first image is assumed JPEG and a video MP4; length is unknown and
// reported as 0.
const (
	enclosureImageType = "image/jpeg"
	enclosureVideoType = "video/mp4"
)
