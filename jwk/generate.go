package jwk

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownAlgorithm is returned by [Generate] for unrecognized identifiers.
var ErrUnknownAlgorithm = errors.New("jwk: unknown algorithm")

const rsaGenerateBits = 2048

// Generate creates a fresh key for alg, declared for that algorithm and
// tagged with a random kid unless opts set one.
func Generate(alg string, opts ...Option) (Key, error) {
	opts = append([]Option{WithKeyID(uuid.NewString()), WithAlgorithm(alg)}, opts...)

	switch alg {
	case "HS256", "HS384", "HS512":
		size := map[string]int{"HS256": 32, "HS384": 48, "HS512": 64}[alg]
		secret := make([]byte, size)
		if _, err := rand.Read(secret); err != nil {
			return Key{}, fmt.Errorf("generate hmac secret: %w", err)
		}
		return NewHMAC(secret, opts...)
	case "RS256", "RS384", "RS512", "PS256", "PS384", "PS512":
		priv, err := rsa.GenerateKey(rand.Reader, rsaGenerateBits)
		if err != nil {
			return Key{}, fmt.Errorf("generate rsa key: %w", err)
		}
		return NewPrivate(priv, opts...)
	case "ES256", "ES384", "ES512":
		curve := map[string]elliptic.Curve{
			"ES256": elliptic.P256(),
			"ES384": elliptic.P384(),
			"ES512": elliptic.P521(),
		}[alg]
		priv, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return Key{}, fmt.Errorf("generate ec key: %w", err)
		}
		return NewPrivate(priv, opts...)
	case "EdDSA":
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return Key{}, fmt.Errorf("generate ed25519 key: %w", err)
		}
		return NewPrivate(priv, opts...)
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}
