package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"testops/internal/domain"
)

// maxEvents caps the log at the most recent entries; oldest are evicted.
const maxEvents = 1000

// Entry is an audit event before the log assigns its ID and timestamp.
type Entry struct {
	WorkspaceID string
	UserID      string
	Action      domain.AuditAction
	EntityType  domain.EntityType
	EntityID    string
	EntityName  string
	Changes     map[string]domain.FieldChange
	Description string
}

// Log is an append-only, bounded, most-recent-first event list. It lives
// for the process lifetime only.
type Log struct {
	mu     sync.RWMutex
	events []domain.AuditEvent
	Now    func() time.Time
}

func NewLog() *Log {
	return &Log{Now: time.Now}
}

func (l *Log) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Record assigns an ID and timestamp, prepends the event, and truncates to
// the most recent 1000 entries.
func (l *Log) Record(e Entry) domain.AuditEvent {
	evt := domain.AuditEvent{
		ID:          "audit-" + uuid.NewString(),
		WorkspaceID: e.WorkspaceID,
		UserID:      e.UserID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		EntityName:  e.EntityName,
		Changes:     e.Changes,
		Description: e.Description,
		CreatedAt:   l.now(),
	}
	l.mu.Lock()
	l.events = append([]domain.AuditEvent{evt}, l.events...)
	if len(l.events) > maxEvents {
		l.events = l.events[:maxEvents]
	}
	l.mu.Unlock()
	return evt
}

// ByEntity returns events for one entity, most recent first.
func (l *Log) ByEntity(entityType domain.EntityType, entityID string) []domain.AuditEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var res []domain.AuditEvent
	for _, e := range l.events {
		if e.EntityType == entityType && e.EntityID == entityID {
			res = append(res, e)
		}
	}
	return res
}

// Recent returns up to limit events, most recent first.
func (l *Log) Recent(limit int) []domain.AuditEvent {
	if limit <= 0 {
		limit = 10
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit > len(l.events) {
		limit = len(l.events)
	}
	res := make([]domain.AuditEvent, limit)
	copy(res, l.events[:limit])
	return res
}

// Len reports the current number of retained events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
