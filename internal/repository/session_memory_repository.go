package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// sweepEvery controls how many writes happen between expired-session sweeps.
const sweepEvery = 64

type memorySession struct {
	entries   []models.Entry
	expiresAt time.Time
}

// MemorySessionRepository keeps entry lists in process memory, keyed by session id.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	writes   int
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// Get returns a copy of the session's entries.
func (r *MemorySessionRepository) Get(_ context.Context, sessionID string) ([]models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, appErrors.ErrSessionMiss
	}
	if r.expired(sess) {
		delete(r.sessions, sessionID)
		return nil, appErrors.ErrSessionMiss
	}
	return cloneEntries(sess.entries), nil
}

// Save replaces the session's entries and refreshes its expiry. A non-positive ttl never expires.
func (r *MemorySessionRepository) Save(_ context.Context, sessionID string, entries []models.Entry, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = r.now().Add(ttl)
	}
	r.sessions[sessionID] = memorySession{entries: cloneEntries(entries), expiresAt: expiresAt}

	r.writes++
	if r.writes%sweepEvery == 0 {
		r.sweepLocked()
	}
	return nil
}

// Delete drops the session.
func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired ones included until swept.
func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes expired sessions.
func (r *MemorySessionRepository) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
}

func (r *MemorySessionRepository) sweepLocked() {
	for id, sess := range r.sessions {
		if r.expired(sess) {
			delete(r.sessions, id)
		}
	}
}

func (r *MemorySessionRepository) expired(sess memorySession) bool {
	return !sess.expiresAt.IsZero() && !r.now().Before(sess.expiresAt)
}

func cloneEntries(entries []models.Entry) []models.Entry {
	if entries == nil {
		return nil
	}
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	return out
}
