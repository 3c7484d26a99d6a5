package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is a server-side login record. The signed token handed to the
// client only carries its ID; logging out deletes the record.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	CompanyID uuid.UUID `json:"companyId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists sessions. Implementations must be safe for
// concurrent use and must stop returning a session once it expires.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int, error)
	Close() error
}

// MemorySessionStore keeps sessions in process memory with a background
// sweeper that drops expired entries.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byUser   map[uuid.UUID]map[string]struct{}
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

// NewMemorySessionStore creates a store and starts its sweeper, which runs
// every interval until Close is called.
func NewMemorySessionStore(interval time.Duration) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[uuid.UUID]map[string]struct{}),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go s.cleanupLoop(interval)
	return s
}

func (s *MemorySessionStore) Save(_ context.Context, sess *Session) error {
	cp := *sess

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[cp.ID] = &cp
	ids, ok := s.byUser[cp.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[cp.UserID] = ids
	}
	ids[cp.ID] = struct{}{}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || sess.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	return nil
}

// DeleteForUser ends every session of userID and returns how many were removed.
func (s *MemorySessionStore) DeleteForUser(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byUser[userID]
	count := 0
	for id := range ids {
		if _, ok := s.sessions[id]; ok {
			count++
		}
		s.removeLocked(id)
	}
	return count, nil
}

// Count returns the number of stored sessions, expired or not.
func (s *MemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Close stops the sweeper. Safe to call more than once.
func (s *MemorySessionStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *MemorySessionStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemorySessionStore) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.Expired(now) {
			s.removeLocked(id)
		}
	}
}

// removeLocked deletes id from both indexes. Caller holds s.mu.
func (s *MemorySessionStore) removeLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	if ids := s.byUser[sess.UserID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byUser, sess.UserID)
		}
	}
}
