package core

import (
	"sync"
	"time"

	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/internal/session"
)

// ActivityLog records what happened for the UI's message pane. Progress
// feedback lives in the status bar; the log keeps commands and outcomes.
// Pending hands out the entries the UI has not received yet; they stay
// pending until MarkSent confirms delivery.
type ActivityLog struct {
	mu       sync.Mutex
	entries  []models.Message
	lastSent int
	now      func() time.Time
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{now: time.Now}
}

func (l *ActivityLog) Add(kind models.MessageType, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.add(kind, content)
}

func (l *ActivityLog) add(kind models.MessageType, content string) {
	l.entries = append(l.entries, models.Message{Content: content, Type: kind, At: l.now()})
}

// RecordOutcome logs the terminal result of a user operation.
func (l *ActivityLog) RecordOutcome(out session.Outcome) {
	if out.Message == "" {
		return
	}
	kind := models.Result
	if !out.OK() {
		kind = models.Failure
	}
	l.Add(kind, out.Message)
}

func (l *ActivityLog) Pending() []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Message(nil), l.entries[l.lastSent:]...)
}

// MarkSent advances past n delivered entries.
func (l *ActivityLog) MarkSent(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSent = min(l.lastSent+n, len(l.entries))
}

func (l *ActivityLog) Messages() []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Message(nil), l.entries...)
}
