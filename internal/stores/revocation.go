package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRevocationBackend is returned when Redis cannot be reached.
	ErrRevocationBackend = errors.New("revocation backend unavailable")
	// ErrInvalidTokenID is returned for an empty token identifier.
	ErrInvalidTokenID = errors.New("invalid token id")
)

// minRevocationTTL keeps an entry alive when the token has no expiry or
// has already expired at revocation time.
const minRevocationTTL = time.Second

// RevocationStore is a jti denylist. Entries expire with the token they
// revoke.
type RevocationStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRevocationStore returns a store writing under prefix (default "jrv").
func NewRevocationStore(redisClient redis.UniversalClient, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "jrv"
	}
	return &RevocationStore{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RevocationStore) key(jti string) string {
	return s.prefix + ":" + jti
}

// Revoke denylists jti until expiresAt. A zero expiresAt keeps the entry
// for maxTTL.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time, maxTTL time.Duration) error {
	if jti == "" {
		return ErrInvalidTokenID
	}
	ttl := maxTTL
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(s.now())
	}
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	if err := s.redis.Set(ctx, s.key(jti), s.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationBackend, err)
	}
	return nil
}

// IsRevoked reports whether jti is denylisted.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevocationBackend, err)
	}
	return n > 0, nil
}

// Restore removes jti from the denylist and reports whether it was present.
func (s *RevocationStore) Restore(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRevocationBackend, err)
	}
	return n > 0, nil
}
