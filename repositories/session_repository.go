package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/go-redis/redis/v8"
)

// SessionRepository keeps back-office sessions and failed login counters in
// Redis. Both expire on their own.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(realm models.Realm, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", realm, sessionID)
}

func attemptsKey(realm models.Realm, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", realm, ip)
}

func (r *SessionRepository) Create(ctx context.Context, realm models.Realm, sessionID, username string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(realm, sessionID), username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Exists(ctx context.Context, realm models.Realm, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(realm, sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, realm models.Realm, sessionID string) error {
	return r.client.Del(ctx, sessionKey(realm, sessionID)).Err()
}

func (r *SessionRepository) Failures(ctx context.Context, realm models.Realm, ip string) (int64, error) {
	n, err := r.client.Get(ctx, attemptsKey(realm, ip)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// RecordFailure counts a failed login. The window starts at the first failure.
func (r *SessionRepository) RecordFailure(ctx context.Context, realm models.Realm, ip string, window time.Duration) (int64, error) {
	key := attemptsKey(realm, ip)
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (r *SessionRepository) ResetFailures(ctx context.Context, realm models.Realm, ip string) error {
	return r.client.Del(ctx, attemptsKey(realm, ip)).Err()
}
