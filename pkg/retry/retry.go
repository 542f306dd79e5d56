package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"igloader/pkg/config"
	errs "igloader/pkg/errors"
	"igloader/pkg/logger"
)

// ErrExhausted is wrapped into the error returned once every attempt failed
var ErrExhausted = errors.New("retry attempts exhausted")

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts counts every call including the first one (0 means unlimited)
	MaxAttempts int
	// InitialInterval is the first delay, or every delay when Constant is set
	InitialInterval time.Duration
	// MaxInterval caps exponential growth
	MaxInterval time.Duration
	// Multiplier is the exponential growth factor
	Multiplier float64
	// Constant waits InitialInterval between every attempt
	Constant bool
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
		RetryIf:         DefaultRetryIf,
		Logger:          logger.GetLogger(),
	}
}

// FromConfig builds an exponential policy from the retry section of the
// application config. A disabled section yields a single attempt.
func FromConfig(cfg config.RetryConfig) *Config {
	c := DefaultConfig()
	if !cfg.Enabled {
		c.MaxAttempts = 1
		return c
	}
	c.MaxAttempts = cfg.MaxAttempts
	if cfg.InitialInterval > 0 {
		c.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		c.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		c.Multiplier = cfg.Multiplier
	}
	return c
}

// Constant returns a policy making at most attempts calls spaced by delay
func Constant(attempts int, delay time.Duration) *Config {
	return &Config{
		MaxAttempts:     attempts,
		InitialInterval: delay,
		Constant:        true,
		RetryIf:         DefaultRetryIf,
		Logger:          logger.GetLogger(),
	}
}

// DefaultRetryIf is the default retry predicate
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}

	// Unknown errors get another chance
	return true
}

// Permanent marks err so that Do stops immediately and returns it
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (c *Config) backOff() backoff.BackOff {
	if c.Constant {
		return backoff.NewConstantBackOff(c.InitialInterval)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.InitialInterval
	bo.MaxInterval = c.MaxInterval
	bo.Multiplier = c.Multiplier
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Do executes an operation with retry logic
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	var bo backoff.BackOff = cfg.backOff()
	if cfg.MaxAttempts > 0 {
		bo = backoff.WithMaxRetries(bo, uint64(cfg.MaxAttempts-1))
	}
	bo = backoff.WithContext(bo, ctx)

	attempt := 0
	stopped := false
	wrapped := func() error {
		attempt++
		err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			stopped = true
			return err
		}
		if !retryIf(err) {
			stopped = true
			log.DebugWithFields("error is not retryable", map[string]interface{}{
				"error": err.Error(),
			})
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": cfg.MaxAttempts,
		})
	}

	err := backoff.RetryNotify(wrapped, bo, notify)
	if err == nil {
		return nil
	}

	if stopped {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return fmt.Errorf("retry cancelled: %w", err)
	}
	if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
		log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
			"attempts":   attempt,
			"last_error": err.Error(),
		})
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
	}
	return err
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op OperationWithResult[T], cfg *Config) (T, error) {
	var result T

	err := Do(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)

	return result, err
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
