package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// recorder is the shared sink behind a TestLogger and all of its derived loggers
type recorder struct {
	mu       sync.Mutex
	messages []LogMessage
}

// TestLogger captures every message so tests can assert on what was logged
type TestLogger struct {
	rec    *recorder
	fields map[string]interface{}
	err    error
	nop    *zerolog.Logger
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{rec: &recorder{}, nop: &nop}
}

func (l *TestLogger) derive(fields map[string]interface{}, err error) *TestLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{rec: l.rec, fields: merged, err: err, nop: l.nop}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	merged := l.fields
	if len(fields) > 0 {
		merged = l.derive(fields, nil).fields
	}

	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.messages = append(l.rec.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
		Error:   l.err,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.log("FATAL", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.derive(map[string]interface{}{key: value}, l.err)
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(fields, l.err)
}

func (l *TestLogger) WithError(err error) Logger {
	return l.derive(nil, err)
}

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.nop }

// GetMessages returns a copy of all captured log messages
func (l *TestLogger) GetMessages() []LogMessage {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()

	messages := make([]LogMessage, len(l.rec.messages))
	copy(messages, l.rec.messages)
	return messages
}

// GetMessagesByLevel returns all messages of a specific level
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, msg := range l.GetMessages() {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, msg := range l.GetMessages() {
		if msg.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if an error was logged
func (l *TestLogger) HasError() bool {
	return len(l.GetMessagesByLevel("ERROR")) > 0
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	l.rec.mu.Lock()
	defer l.rec.mu.Unlock()
	l.rec.messages = l.rec.messages[:0]
}
