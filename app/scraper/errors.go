package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvableIdentifier indicates the URL matched no known
	// page/profile identifier pattern for its platform.
	ErrUnresolvableIdentifier = errors.New("could not resolve an identifier from the URL")

	// ErrUnsupportedPlatform indicates the router produced a platform
	// with no extractor behind it.
	ErrUnsupportedPlatform = errors.New("platform is not supported")

	// ErrFetchTimeout indicates an outbound fetch exceeded the
	// configured per-request timeout.
	ErrFetchTimeout = errors.New("fetch timed out")
)

// FetchError reports an upstream HTTP failure with its status code.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s: HTTP %d", e.URL, e.Status)
}
