package scraper

import (
	"time"

	"github.com/araddon/dateparse"
)

// RawPayload is the loosely typed per-platform post representation
// produced by a fetch step. It is consumed exactly once by an
// extractor; the dynamic shape never leaks past the Post boundary.
type RawPayload map[string]any

// Str returns the first non-empty string found under the given keys.
func (p RawPayload) Str(keys ...string) string {
	for _, key := range keys {
		if s, ok := p[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first numeric value found under the given keys,
// clamped to zero when negative. Missing or non-numeric values yield 0.
func (p RawPayload) Int(keys ...string) int {
	for _, key := range keys {
		var n int
		switch v := p[key].(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			n = int(v)
		default:
			continue
		}
		if n < 0 {
			return 0
		}
		return n
	}
	return 0
}

// Has reports whether any of the given keys carries a numeric value.
func (p RawPayload) Has(keys ...string) bool {
	for _, key := range keys {
		switch p[key].(type) {
		case int, int64, float64:
			return true
		}
	}
	return false
}

// Strs returns the first string list found under the given keys.
// Untyped []any lists are accepted as long as the elements are strings.
func (p RawPayload) Strs(keys ...string) []string {
	for _, key := range keys {
		switch v := p[key].(type) {
		case []string:
			if len(v) > 0 {
				return v
			}
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// Time parses the first usable time representation found under the
// given keys: a typed instant, epoch seconds, or a date string in any
// recognizable layout. Unparseable values are skipped, nil means the
// source provided no usable time.
func (p RawPayload) Time(keys ...string) *time.Time {
	for _, key := range keys {
		switch v := p[key].(type) {
		case time.Time:
			return &v
		case *time.Time:
			if v != nil {
				return v
			}
		case int:
			t := time.Unix(int64(v), 0).UTC()
			return &t
		case int64:
			t := time.Unix(v, 0).UTC()
			return &t
		case float64:
			t := time.Unix(int64(v), 0).UTC()
			return &t
		case string:
			if v == "" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return &t
			}
			if t, err := dateparse.ParseAny(v); err == nil {
				return &t
			}
		}
	}
	return nil
}
