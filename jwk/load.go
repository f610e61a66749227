package jwk

import (
	"crypto"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidPEM is returned when no supported key can be read from a PEM block.
	ErrInvalidPEM = errors.New("jwk: invalid pem key")
	// ErrInvalidJWK is returned when a JSON Web Key cannot be decoded.
	ErrInvalidJWK = errors.New("jwk: invalid json web key")
	// ErrDuplicateKeyID is returned when a key set holds two keys with one kid.
	ErrDuplicateKeyID = errors.New("jwk: duplicate key id")
)

// FromPEM decodes an RSA, EC or Ed25519 key. Private encodings yield keys
// that can both sign and verify; public keys and certificates verify only.
func FromPEM(data []byte, opts ...Option) (Key, error) {
	if rsaKey, err := gjwt.ParseRSAPrivateKeyFromPEM(data); err == nil {
		return NewPrivate(rsaKey, opts...)
	}
	if ecKey, err := gjwt.ParseECPrivateKeyFromPEM(data); err == nil {
		return NewPrivate(ecKey, opts...)
	}
	if edKey, err := gjwt.ParseEdPrivateKeyFromPEM(data); err == nil {
		signer, ok := edKey.(crypto.Signer)
		if !ok {
			return Key{}, ErrInvalidPEM
		}
		return NewPrivate(signer, opts...)
	}
	if rsaPub, err := gjwt.ParseRSAPublicKeyFromPEM(data); err == nil {
		return NewPublic(rsaPub, opts...)
	}
	if ecPub, err := gjwt.ParseECPublicKeyFromPEM(data); err == nil {
		return NewPublic(ecPub, opts...)
	}
	if edPub, err := gjwt.ParseEdPublicKeyFromPEM(data); err == nil {
		return NewPublic(edPub, opts...)
	}
	return Key{}, ErrInvalidPEM
}

// FromJWK decodes a single RFC 7517 key. The JWK "kid" and "alg" members are
// used unless overridden by opts.
func FromJWK(data []byte, opts ...Option) (Key, error) {
	var raw jose.JSONWebKey
	if err := raw.UnmarshalJSON(data); err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}
	return fromJOSE(raw, opts...)
}

func fromJOSE(raw jose.JSONWebKey, opts ...Option) (Key, error) {
	base := []Option{WithKeyID(raw.KeyID)}
	if raw.Algorithm != "" {
		base = append(base, WithAlgorithm(raw.Algorithm))
	}
	opts = append(base, opts...)

	switch material := raw.Key.(type) {
	case []byte:
		return NewHMAC(material, opts...)
	case crypto.Signer:
		return NewPrivate(material, opts...)
	case crypto.PublicKey:
		return NewPublic(material, opts...)
	default:
		return Key{}, ErrUnsupportedKey
	}
}

// ParseSet decodes a JWKS document. Keys whose "use" is "enc" are skipped.
func ParseSet(data []byte) ([]Key, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
	}

	keys := make([]Key, 0, len(set.Keys))
	seen := make(map[string]struct{}, len(set.Keys))
	for _, raw := range set.Keys {
		if raw.Use == "enc" {
			continue
		}
		key, err := fromJOSE(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", raw.KeyID, err)
		}
		if kid := key.KeyID(); kid != "" {
			if _, dup := seen[kid]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateKeyID, kid)
			}
			seen[kid] = struct{}{}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// MarshalJWK encodes k as a JSON Web Key with "use":"sig". Private material
// is included when present; call [Key.Public] first to publish a key.
func MarshalJWK(k Key) ([]byte, error) {
	var material any
	switch {
	case k.family == FamilyOct:
		material = append([]byte(nil), k.secret...)
	case k.private != nil:
		material = k.private
	case k.public != nil:
		material = k.public
	default:
		return nil, ErrNilKey
	}
	return jose.JSONWebKey{
		Key:       material,
		KeyID:     k.kid,
		Algorithm: k.Algorithm(),
		Use:       "sig",
	}.MarshalJSON()
}

// MarshalSet encodes keys as a JWKS document.
func MarshalSet(keys ...Key) ([]byte, error) {
	set := struct {
		Keys []json.RawMessage `json:"keys"`
	}{Keys: make([]json.RawMessage, 0, len(keys))}
	for _, k := range keys {
		data, err := MarshalJWK(k)
		if err != nil {
			return nil, err
		}
		set.Keys = append(set.Keys, data)
	}
	return json.Marshal(set)
}
