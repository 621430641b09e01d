package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "trl:jti:"
	resetKeyPrefix   = "reset:email:"
)

// RevocationStore blocks replay of logged-out bearers. Each revoked jti lives
// exactly as long as the token it belongs to would have.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore constructs a RevocationStore.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke records the jti for the remaining token lifetime. Tokens already
// past expiry need no entry.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", remaining).Err()
}

// IsRevoked reports whether the jti was logged out.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := s.client.Get(ctx, revokedKeyPrefix+jti).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ResetTokenStore holds short-lived opaque password reset tokens keyed by
// email. One outstanding token per email; issuing replaces the previous one.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokenStore constructs a ResetTokenStore.
func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Issue mints a 256-bit token and stores it under the email for the ttl.
func (s *ResetTokenStore) Issue(ctx context.Context, email string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	if err := s.client.Set(ctx, resetKeyPrefix+email, token, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume validates and burns the outstanding token for the email. It reports
// false for a missing, expired or mismatched token.
func (s *ResetTokenStore) Consume(ctx context.Context, email, token string) (bool, error) {
	key := resetKeyPrefix + email
	stored, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if stored != token {
		return false, nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return false, err
	}
	return true, nil
}
