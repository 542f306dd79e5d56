package backend

import (
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is where the backend listens when nothing else is configured
	DefaultBaseURL = "http://127.0.0.1:5000"

	PostEndpoint              = "/api/post"
	ProfileEndpoint           = "/api/profile"
	ProfilePostsEndpoint      = "/api/profile/posts"
	ProfileHighlightsEndpoint = "/api/profile/highlights"
	HighlightEndpoint         = "/api/highlight"
	ProfileDownloadEndpoint   = "/api/profile/download"
	ProxyImageEndpoint        = "/api/proxy-image"

	// StartCursor asks the posts job for its first page
	StartCursor = "0"
)

// PlaceholderImage is shown in place of media that has no usable URL
const PlaceholderImage = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAxIDEiPjxyZWN0IHdpZHRoPSIxIiBoZWlnaHQ9IjEiIGZpbGw9IiNlMmU4ZjAiLz48L3N2Zz4="

// Fallback messages used when a failed response carries no error field
const (
	FallbackSearch       = "Failed to fetch data."
	FallbackInitialPosts = "Failed to fetch initial posts."
	FallbackMorePosts    = "Failed to fetch more posts."
	FallbackHighlights   = "Failed to fetch highlights."
	FallbackArchive      = "Failed to download zip file."
	FallbackFullPost     = "Failed to fetch high-quality post."
	FallbackMedia        = "Failed to download media."
)

// ProxyImageURL routes a CDN image through the backend's image proxy so it
// can be loaded without hotlink restrictions. HTML-escaped ampersands are
// decoded first. Empty input yields PlaceholderImage.
func ProxyImageURL(baseURL, imageURL string) string {
	decoded := strings.ReplaceAll(imageURL, "&amp;", "&")
	if decoded == "" {
		return PlaceholderImage
	}
	return strings.TrimRight(baseURL, "/") + ProxyImageEndpoint + "?url=" + encodeURIComponent(decoded)
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	// QueryEscape turns spaces into '+' and escapes a few characters that
	// encodeURIComponent leaves alone
	r := strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	)
	return r.Replace(escaped)
}
