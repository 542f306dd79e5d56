// Package ratelimit paces outgoing backend and media requests.
//
// TokenBucket wraps golang.org/x/time/rate. The backend client calls Wait
// before every request so that a burst of page loads and downloads never
// exceeds the configured requests per minute.
package ratelimit
