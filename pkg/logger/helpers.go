package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed backend request
func LogRequest(l Logger, method, endpoint string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode == 202:
		l.DebugWithFields("backend job still running", fields)
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("backend request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("backend request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("backend request server error", fields)
	}
}

// LogDownload logs the outcome of one media download
func LogDownload(l Logger, name, mediaType string, success bool, err error) {
	entry := l.WithFields(map[string]interface{}{
		"file":       name,
		"media_type": mediaType,
		"success":    success,
	})

	if err != nil {
		entry.WithError(err).Error("Download failed")
	} else if success {
		entry.Info("Download completed")
	} else {
		entry.Warn("Download skipped")
	}
}

// LogPoll logs a single tick of a background poller
func LogPoll(l Logger, poller, taskID string, status string) {
	l.DebugWithFields("poll tick", map[string]interface{}{
		"poller":  poller,
		"task_id": taskID,
		"status":  status,
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := l.WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Debug("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	l.WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Debug("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
