// Package backend is the HTTP client for the media backend: the service
// that resolves posts, profiles and highlights and runs the long posts and
// highlights jobs for a profile.
//
// Every call is a JSON POST except media and proxied image fetches. Failed
// responses carry {"error": "..."}; when they don't, each call has its own
// fallback message. Job endpoints may answer 202 while the job is still
// running, which is reported through PostPage.Pending instead of an error.
package backend
