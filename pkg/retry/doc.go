// Package retry runs operations against the backend again when they fail
// with a transient error.
//
// Backoff timing comes from github.com/cenkalti/backoff/v4. Two shapes are
// used in practice: an exponential schedule for ordinary requests and a
// constant one for readiness polling, where the caller waits for a backend
// job to produce its first result.
//
//	err := retry.Do(ctx, func() error {
//		return client.Ping(ctx)
//	}, retry.FromConfig(cfg.Retry))
//
//	page, err := retry.DoWithResult(ctx, fetchPage, retry.Constant(5, time.Second))
//
// Errors that the RetryIf predicate rejects, or that are wrapped with
// Permanent, end the loop immediately and are returned as is.
package retry
