package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// NewSlog exposes l as a *slog.Logger for libraries that only speak slog
// (the poll scheduler among them). Records go to the same zerolog sink and,
// when sentry is initialized, errors are also reported there.
func NewSlog(l Logger, level string) *slog.Logger {
	zl := zerolog.Nop()
	if l != nil {
		if z := l.GetZerolog(); z != nil {
			zl = *z
		}
	}

	handlers := []slog.Handler{
		slogzerolog.Option{Level: slogLevel(level), Logger: &zl}.NewZerologHandler(),
	}
	if sentry.CurrentHub().Client() != nil {
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// InitSentry binds the global sentry hub to dsn. The returned func flushes
// buffered events and should run before the process exits. An empty dsn is a
// no-op.
func InitSentry(dsn, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal", "panic", "disabled":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
