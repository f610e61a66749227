package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrKeyNotFound is returned when no document is stored for a kid.
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyBackend is returned when Redis cannot be reached.
	ErrKeyBackend = errors.New("key backend unavailable")
	// ErrInvalidKeyID is returned for an empty key identifier.
	ErrInvalidKeyID = errors.New("invalid key id")
)

// KeyStore maps key identifiers to encoded keys (PEM or JWK JSON). It does
// not interpret the documents.
type KeyStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewKeyStore returns a store writing under prefix (default "jwk").
func NewKeyStore(redisClient redis.UniversalClient, prefix string) *KeyStore {
	if prefix == "" {
		prefix = "jwk"
	}
	return &KeyStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *KeyStore) key(kid string) string {
	return s.prefix + ":" + kid
}

// Put stores doc under kid without expiry.
func (s *KeyStore) Put(ctx context.Context, kid string, doc []byte) error {
	if kid == "" {
		return ErrInvalidKeyID
	}
	if err := s.redis.Set(ctx, s.key(kid), doc, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrKeyBackend, err)
	}
	return nil
}

// Get returns the document stored under kid.
func (s *KeyStore) Get(ctx context.Context, kid string) ([]byte, error) {
	if kid == "" {
		return nil, ErrInvalidKeyID
	}
	data, err := s.redis.Get(ctx, s.key(kid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyBackend, err)
	}
	return data, nil
}

// Delete removes kid and reports whether it existed.
func (s *KeyStore) Delete(ctx context.Context, kid string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(kid)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrKeyBackend, err)
	}
	return n > 0, nil
}
