package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestSession(userID uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CompanyID: uuid.New(),
		Role:      RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemorySessionStore_SaveAndGet(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	sess := newTestSession(uuid.New(), time.Hour)
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != sess.UserID || got.CompanyID != sess.CompanyID || got.Role != sess.Role {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestMemorySessionStore_GetUnknown(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()

	if _, err := store.Get(context.Background(), "missing"); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionStore_ExpiredNotReturned(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	sess := newTestSession(uuid.New(), -time.Second)
	store.Save(ctx, sess)

	if _, err := store.Get(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("expected expired session to be hidden, got %v", err)
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	sess := newTestSession(uuid.New(), time.Hour)
	store.Save(ctx, sess)
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != ErrSessionNotFound {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}
	// Deleting twice is fine.
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemorySessionStore_DeleteForUser(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	user42 := uuid.New()
	user99 := uuid.New()
	s1 := newTestSession(user42, time.Hour)
	s2 := newTestSession(user42, time.Hour)
	s3 := newTestSession(user99, time.Hour)
	for _, s := range []*Session{s1, s2, s3} {
		store.Save(ctx, s)
	}

	n, err := store.DeleteForUser(ctx, user42)
	if err != nil {
		t.Fatalf("DeleteForUser: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 sessions removed, got %d", n)
	}
	if _, err := store.Get(ctx, s1.ID); err != ErrSessionNotFound {
		t.Error("expected s1 to be removed")
	}
	if _, err := store.Get(ctx, s3.ID); err != nil {
		t.Errorf("expected other user's session to survive, got %v", err)
	}
}

func TestMemorySessionStore_Cleanup(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	store.Save(ctx, newTestSession(uuid.New(), -time.Minute))
	store.Save(ctx, newTestSession(uuid.New(), time.Hour))

	store.cleanup()

	if store.Count() != 1 {
		t.Errorf("expected 1 session after cleanup, got %d", store.Count())
	}
}

func TestMemorySessionStore_CloseTwice(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	store.Close()
	store.Close()
}

func TestMemorySessionStore_Concurrent(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	defer store.Close()
	ctx := context.Background()
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newTestSession(userID, time.Hour)
			store.Save(ctx, s)
			store.Get(ctx, s.ID)
		}()
	}
	wg.Wait()

	n, _ := store.DeleteForUser(ctx, userID)
	if n != 50 {
		t.Errorf("expected 50 sessions, got %d", n)
	}
}
