package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisSessionStore keeps sessions in redis so that several server
// instances share logins. Each session is a JSON value whose key expires
// with the session; a per-user set indexes session ids for bulk revocation.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "beautydesk:",
		now:    time.Now,
	}
}

func (s *RedisSessionStore) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

func (s *RedisSessionStore) userKey(userID uuid.UUID) string {
	return s.prefix + "user_sessions:" + userID.String()
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(sess.ID), data, ttl)
	pipe.SAdd(ctx, s.userKey(sess.UserID), sess.ID)
	pipe.Expire(ctx, s.userKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	pipe.SRem(ctx, s.userKey(sess.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) DeleteForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return int(n), fmt.Errorf("delete user session index: %w", err)
	}
	return int(n), nil
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Ping checks connectivity, used at startup.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
