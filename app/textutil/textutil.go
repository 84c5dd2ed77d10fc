// Package textutil provides the shared text cleaning helpers used by
// every extractor and by feed synthesis.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	linkRe       = regexp.MustCompile(`http[s]?://\S+`)
	hashtagRe    = regexp.MustCompile(`#(\w+)`)
)

// Ellipsis is appended by Summarize when a cut lands mid-sentence.
const Ellipsis = "..."

// CollapseWhitespace reduces any whitespace run to a single space and
// trims the result.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// StripLinks removes http(s) URL tokens from text.
func StripLinks(text string) string {
	return CollapseWhitespace(linkRe.ReplaceAllString(text, ""))
}

// StripHashtags removes #word tokens from text.
func StripHashtags(text string) string {
	return CollapseWhitespace(hashtagRe.ReplaceAllString(text, ""))
}

// Hashtags returns all #word tokens in order of first appearance,
// without the leading '#'. Duplicates are preserved.
func Hashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// LimitHashtags removes hashtag tokens beyond the first max occurrences
// and collapses the leftover whitespace.
func LimitHashtags(text string, max int) string {
	tags := hashtagRe.FindAllString(text, -1)
	if len(tags) <= max {
		return text
	}
	for _, tag := range tags[max:] {
		text = strings.Replace(text, tag, "", 1)
	}
	return CollapseWhitespace(text)
}

// Summarize truncates text to at most maxLength characters, preferring
// natural boundaries. Precedence: the first sentence terminator between
// maxLength/2 and maxLength (cut inclusive, no marker), then the last
// space boundary before maxLength (cut plus ellipsis), then a hard cut
// at maxLength plus ellipsis. The result is never longer than
// maxLength plus the ellipsis marker.
func Summarize(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	minLength := maxLength / 2

	for i := minLength; i < maxLength && i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			return strings.TrimSpace(text[:i+1])
		}
	}

	truncated := text[:maxLength]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > minLength {
		return truncated[:lastSpace] + Ellipsis
	}

	return truncated + Ellipsis
}
