// Package notify delivers user-visible notifications (toasts) and navigation
// events from the client core to whatever front end is attached.
package notify

import (
	"sync"

	"ai-agent-character-demo/client/pkg/logger"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier surfaces a short message to the user
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// Notification is one recorded or broadcast toast
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier backed by log
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notify")}
}

func (n *LogNotifier) Success(message string) { n.log.Info("notification", "toast_level", LevelSuccess, "message", message) }
func (n *LogNotifier) Error(message string)   { n.log.Warn("notification", "toast_level", LevelError, "message", message) }
func (n *LogNotifier) Info(message string)    { n.log.Info("notification", "toast_level", LevelInfo, "message", message) }

// Recorder keeps every notification in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(message string) { r.add(LevelSuccess, message) }
func (r *Recorder) Error(message string)   { r.add(LevelError, message) }
func (r *Recorder) Info(message string)    { r.add(LevelInfo, message) }

func (r *Recorder) add(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message})
}

// All returns a copy of everything recorded so far
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Messages returns the recorded messages at the given level
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Reset drops everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Multi fans every notification out to several notifiers
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}

func (m Multi) Info(message string) {
	for _, n := range m {
		n.Info(message)
	}
}
