package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"socialrss/app/textutil"
)

var instagramUserPatterns = []*regexp.Regexp{
	regexp.MustCompile(`instagram\.com/([^/?]+)`),
	regexp.MustCompile(`instagr\.am/([^/?]+)`),
}

// Path segments that never identify a profile.
var instagramReservedSegments = map[string]bool{
	"p":       true,
	"reel":    true,
	"tv":      true,
	"stories": true,
	"explore": true,
}

// maxCaptionHashtags caps how many hashtags survive caption
// normalization; extras are removed from the text.
const maxCaptionHashtags = 5

// InstagramUsername resolves a profile username from an Instagram URL.
// Reserved segments (post, reel, story URLs and the like) are rejected
// because they do not point at a profile.
func InstagramUsername(rawURL string) (string, error) {
	for _, pattern := range instagramUserPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			username := strings.SplitN(match[1], "?", 2)[0]
			username = strings.TrimSuffix(username, "/")
			if username == "" || instagramReservedSegments[username] {
				return "", ErrUnresolvableIdentifier
			}
			return username, nil
		}
	}
	return "", ErrUnresolvableIdentifier
}

// The app id Instagram's own web client sends; required by the profile
// endpoint.
const instagramAppID = "936619743392459"

const defaultInstagramAPIBase = "https://i.instagram.com"

type InstagramExtractor struct {
	client  *Client
	apiBase string
}

func NewInstagramExtractor(client *Client) *InstagramExtractor {
	return &InstagramExtractor{client: client, apiBase: defaultInstagramAPIBase}
}

// NewInstagramExtractorWithBase overrides the API host, used in tests.
func NewInstagramExtractorWithBase(client *Client, apiBase string) *InstagramExtractor {
	return &InstagramExtractor{client: client, apiBase: apiBase}
}

// Fixed projection of the web_profile_info response. Everything else
// in the payload is ignored.
type igProfileResponse struct {
	Data struct {
		User *igUser `json:"user"`
	} `json:"data"`
}

type igUser struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	ID       string `json:"id"`
	Media    struct {
		Count int `json:"count"`
		Edges []struct {
			Node igMediaNode `json:"node"`
		} `json:"edges"`
	} `json:"edge_owner_to_timeline_media"`
}

type igMediaNode struct {
	ID         string `json:"id"`
	Shortcode  string `json:"shortcode"`
	DisplayURL string `json:"display_url"`
	IsVideo    bool   `json:"is_video"`
	VideoURL   string `json:"video_url"`
	Caption    struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	Comments struct {
		Count int `json:"count"`
	} `json:"edge_media_to_comment"`
	Likes struct {
		Count int `json:"count"`
	} `json:"edge_liked_by"`
	TakenAt int64 `json:"taken_at_timestamp"`
}

func (e *InstagramExtractor) Extract(ctx context.Context, url string, maxPosts int) (SourceMetadata, []Post, error) {
	username, err := InstagramUsername(url)
	if err != nil {
		return SourceMetadata{}, nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v1/users/web_profile_info/?username=%s", e.apiBase, username)
	headers := map[string]string{"x-ig-app-id": instagramAppID}

	var resp igProfileResponse
	if err := e.client.JSON(ctx, endpoint, headers, &resp); err != nil {
		return SourceMetadata{}, nil, err
	}

	user := resp.Data.User
	if user == nil {
		return SourceMetadata{}, nil, fmt.Errorf("no user data returned for %s", username)
	}

	metadata := SourceMetadata{
		Platform:  PlatformInstagram.DisplayName(),
		Handle:    username,
		SourceURL: url,
		FetchedAt: time.Now().UTC(),
	}
	if user.FullName != "" {
		metadata.Handle = user.FullName
	}

	posts := make([]Post, 0, maxPosts)
	for _, edge := range user.Media.Edges {
		if len(posts) >= maxPosts {
			break
		}
		posts = append(posts, e.mapPost(username, edge.Node))
	}

	return metadata, posts, nil
}

func (e *InstagramExtractor) mapPost(username string, node igMediaNode) Post {
	caption := ""
	if len(node.Caption.Edges) > 0 {
		caption = node.Caption.Edges[0].Node.Text
	}
	caption = textutil.LimitHashtags(textutil.CollapseWhitespace(caption), maxCaptionHashtags)

	post := Post{
		ID:         node.ID,
		Text:       caption,
		AuthorName: username,
		Metrics: map[string]int{
			MetricLikes:    node.Likes.Count,
			MetricComments: node.Comments.Count,
		},
	}

	if caption != "" {
		post.Summary = textutil.Summarize(textutil.StripHashtags(caption), 150)
	}

	if node.Shortcode != "" {
		post.PostURL = fmt.Sprintf("https://www.instagram.com/p/%s/", node.Shortcode)
	}

	if node.DisplayURL != "" {
		post.Images = []string{node.DisplayURL}
	}

	if node.IsVideo && node.VideoURL != "" {
		post.VideoURL = node.VideoURL
	}

	if node.TakenAt > 0 {
		t := time.Unix(node.TakenAt, 0).UTC()
		post.PublishedAt = &t
	}

	return post
}
