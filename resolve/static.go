package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

var (
	// ErrKeyNotFound is returned when no key matches the token's "kid".
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyIDRequired is returned when a token without "kid" is checked
	// against a source holding more than one key.
	ErrKeyIDRequired = errors.New("token has no kid")
	// ErrBackend is returned when a key source cannot be reached.
	ErrBackend = errors.New("key source unavailable")
)

// Static returns a resolver that always yields key. When both the key and
// the token carry a kid they must match.
func Static(key jwk.Key) jwt.KeyResolver {
	return jwt.KeyResolverFunc(func(_ context.Context, h jws.Header, _ jwt.ClaimSet) (jwk.Key, error) {
		if h.KeyID != "" && key.KeyID() != "" && h.KeyID != key.KeyID() {
			return jwk.Key{}, fmt.Errorf("%w: %q", ErrKeyNotFound, h.KeyID)
		}
		return key, nil
	})
}

// KeySet is an immutable set of keys indexed by kid.
type KeySet struct {
	byID  map[string]jwk.Key
	order []jwk.Key
}

// NewKeySet builds a set. Keys with a repeated kid are rejected.
func NewKeySet(keys ...jwk.Key) (*KeySet, error) {
	s := &KeySet{byID: make(map[string]jwk.Key, len(keys)), order: make([]jwk.Key, 0, len(keys))}
	for _, k := range keys {
		if k.IsZero() {
			return nil, jwk.ErrNilKey
		}
		if kid := k.KeyID(); kid != "" {
			if _, dup := s.byID[kid]; dup {
				return nil, fmt.Errorf("%w: %q", jwk.ErrDuplicateKeyID, kid)
			}
			s.byID[kid] = k
		}
		s.order = append(s.order, k)
	}
	return s, nil
}

// ResolveKey returns the key named by the header kid. A token without kid
// resolves only when the set holds exactly one key.
func (s *KeySet) ResolveKey(_ context.Context, h jws.Header, _ jwt.ClaimSet) (jwk.Key, error) {
	if h.KeyID == "" {
		if len(s.order) == 1 {
			return s.order[0], nil
		}
		return jwk.Key{}, ErrKeyIDRequired
	}
	k, ok := s.byID[h.KeyID]
	if !ok {
		return jwk.Key{}, fmt.Errorf("%w: %q", ErrKeyNotFound, h.KeyID)
	}
	return k, nil
}

// Len returns the number of keys in the set.
func (s *KeySet) Len() int { return len(s.order) }

// KeyIDs returns the key identifiers in sorted order.
func (s *KeySet) KeyIDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PublicJWKS encodes the asymmetric keys of the set as a JWKS document with
// private material stripped. Symmetric keys are never published.
func (s *KeySet) PublicJWKS() ([]byte, error) {
	pub := make([]jwk.Key, 0, len(s.order))
	for _, k := range s.order {
		if k.Family() == jwk.FamilyOct {
			continue
		}
		pub = append(pub, k.Public())
	}
	return jwk.MarshalSet(pub...)
}
