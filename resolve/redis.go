package resolve

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goJWS/internal/stores"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

// Redis resolves keys stored in Redis under prefix:kid. Documents may be
// PEM or JWK JSON.
type Redis struct {
	store *stores.KeyStore
}

// NewRedis returns a resolver reading keys under prefix (default "jwk").
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{store: stores.NewKeyStore(client, prefix)}
}

// ResolveKey fetches and decodes the document for the header kid.
func (r *Redis) ResolveKey(ctx context.Context, h jws.Header, _ jwt.ClaimSet) (jwk.Key, error) {
	if h.KeyID == "" {
		return jwk.Key{}, ErrKeyIDRequired
	}
	doc, err := r.store.Get(ctx, h.KeyID)
	if err != nil {
		if errors.Is(err, stores.ErrKeyNotFound) {
			return jwk.Key{}, fmt.Errorf("%w: %q", ErrKeyNotFound, h.KeyID)
		}
		return jwk.Key{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return decodeDocument(doc, h.KeyID)
}

// Put publishes key under its kid as JWK JSON. Asymmetric keys are stored
// without private material.
func (r *Redis) Put(ctx context.Context, key jwk.Key) error {
	if key.KeyID() == "" {
		return stores.ErrInvalidKeyID
	}
	doc, err := jwk.MarshalJWK(key.Public())
	if err != nil {
		return err
	}
	return r.store.Put(ctx, key.KeyID(), doc)
}

// PutPEM stores a PEM document under kid as is.
func (r *Redis) PutPEM(ctx context.Context, kid string, pem []byte) error {
	if _, err := jwk.FromPEM(pem); err != nil {
		return err
	}
	return r.store.Put(ctx, kid, pem)
}

// Delete removes kid and reports whether it existed.
func (r *Redis) Delete(ctx context.Context, kid string) (bool, error) {
	return r.store.Delete(ctx, kid)
}

func decodeDocument(doc []byte, kid string) (jwk.Key, error) {
	if trimmed := bytes.TrimSpace(doc); len(trimmed) > 0 && trimmed[0] == '{' {
		return jwk.FromJWK(trimmed, jwk.WithKeyID(kid))
	}
	return jwk.FromPEM(doc, jwk.WithKeyID(kid))
}
