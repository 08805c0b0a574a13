// Package notify delivers transient user notifications and sound cues.
package notify

import (
	"time"

	"career-predictor/internal/common/logger"
)

// DefaultAutoClose applies to notifications that do not set their own.
const DefaultAutoClose = 3000 * time.Millisecond

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one toast.
type Notification struct {
	ID        string        `json:"id"`
	Level     Level         `json:"level"`
	Message   string        `json:"message"`
	AutoClose time.Duration `json:"-"`
	At        time.Time     `json:"at"`
}

// Notifier shows notifications. Calls must not block the caller for long and
// never report failure.
type Notifier interface {
	Success(msg string, autoClose time.Duration)
	Error(msg string)
	Info(msg string)
}

// Func adapts a function receiving the assembled Notification.
type Func func(n Notification)

func (f Func) Success(msg string, autoClose time.Duration) {
	f(build(LevelSuccess, msg, autoClose))
}

func (f Func) Error(msg string) { f(build(LevelError, msg, DefaultAutoClose)) }

func (f Func) Info(msg string) { f(build(LevelInfo, msg, DefaultAutoClose)) }

func build(level Level, msg string, autoClose time.Duration) Notification {
	if autoClose <= 0 {
		autoClose = DefaultAutoClose
	}
	return Notification{
		ID:        newID(),
		Level:     level,
		Message:   msg,
		AutoClose: autoClose,
		At:        time.Now().UTC(),
	}
}

// Multi fans out to every notifier in order.
type Multi []Notifier

func (m Multi) Success(msg string, autoClose time.Duration) {
	for _, n := range m {
		n.Success(msg, autoClose)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

func (m Multi) Info(msg string) {
	for _, n := range m {
		n.Info(msg)
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithFields(map[string]interface{}{"component": "notify"})}
}

func (l *LogNotifier) Success(msg string, autoClose time.Duration) {
	l.logger.Info(msg, map[string]interface{}{"level": LevelSuccess, "autoCloseMs": autoClose.Milliseconds()})
}

func (l *LogNotifier) Error(msg string) {
	l.logger.Warn(msg, map[string]interface{}{"level": LevelError})
}

func (l *LogNotifier) Info(msg string) {
	l.logger.Info(msg, map[string]interface{}{"level": LevelInfo})
}
