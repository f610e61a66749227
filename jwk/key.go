package jwk

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"errors"
	"strings"
)

// Family identifies the key variant. Values follow the JWK "kty" names.
type Family string

const (
	// FamilyOct is a symmetric secret used by HMAC algorithms.
	FamilyOct Family = "oct"
	// FamilyRSA is an RSA key pair or public key.
	FamilyRSA Family = "RSA"
	// FamilyEC is an ECDSA key on a NIST curve.
	FamilyEC Family = "EC"
	// FamilyOKP is an Ed25519 key.
	FamilyOKP Family = "OKP"
)

var (
	// ErrEmptySecret is returned when an HMAC key is built from an empty secret.
	ErrEmptySecret = errors.New("jwk: empty hmac secret")
	// ErrNilKey is returned when a constructor receives a nil key.
	ErrNilKey = errors.New("jwk: nil key")
	// ErrUnsupportedKey is returned for key types outside the supported families.
	ErrUnsupportedKey = errors.New("jwk: unsupported key type")
	// ErrUnsupportedCurve is returned for EC keys not on P-256, P-384 or P-521.
	ErrUnsupportedCurve = errors.New("jwk: unsupported elliptic curve")
)

// Key is an immutable signing and/or verification key.
//
// The zero Key is invalid: it has no family and can neither sign nor verify.
type Key struct {
	family  Family
	kid     string
	alg     string
	secret  []byte
	private crypto.Signer
	public  crypto.PublicKey
}

// Option customizes a Key during construction.
type Option func(*Key)

// WithKeyID sets the key identifier carried in the token header "kid".
func WithKeyID(kid string) Option {
	return func(k *Key) {
		k.kid = strings.TrimSpace(kid)
	}
}

// WithAlgorithm pins the algorithm the key is declared for. Without it the
// family default is used (HS256, RS256, ES256/384/512 by curve, EdDSA).
func WithAlgorithm(alg string) Option {
	return func(k *Key) {
		k.alg = strings.TrimSpace(alg)
	}
}

// NewHMAC returns a symmetric key. The secret is copied.
func NewHMAC(secret []byte, opts ...Option) (Key, error) {
	if len(secret) == 0 {
		return Key{}, ErrEmptySecret
	}
	k := Key{family: FamilyOct, secret: append([]byte(nil), secret...)}
	return k.apply(opts), nil
}

// NewPrivate wraps an *rsa.PrivateKey, *ecdsa.PrivateKey or ed25519.PrivateKey.
func NewPrivate(priv crypto.Signer, opts ...Option) (Key, error) {
	if priv == nil {
		return Key{}, ErrNilKey
	}
	var family Family
	switch p := priv.(type) {
	case *rsa.PrivateKey:
		if p == nil {
			return Key{}, ErrNilKey
		}
		family = FamilyRSA
	case *ecdsa.PrivateKey:
		if p == nil {
			return Key{}, ErrNilKey
		}
		if _, err := curveAlgorithm(p.Curve); err != nil {
			return Key{}, err
		}
		family = FamilyEC
	case ed25519.PrivateKey:
		if len(p) != ed25519.PrivateKeySize {
			return Key{}, ErrUnsupportedKey
		}
		family = FamilyOKP
	default:
		return Key{}, ErrUnsupportedKey
	}
	k := Key{family: family, private: priv, public: priv.Public()}
	return k.apply(opts), nil
}

// NewPublic wraps an *rsa.PublicKey, *ecdsa.PublicKey or ed25519.PublicKey.
func NewPublic(pub crypto.PublicKey, opts ...Option) (Key, error) {
	if pub == nil {
		return Key{}, ErrNilKey
	}
	var family Family
	switch p := pub.(type) {
	case *rsa.PublicKey:
		if p == nil {
			return Key{}, ErrNilKey
		}
		family = FamilyRSA
	case *ecdsa.PublicKey:
		if p == nil {
			return Key{}, ErrNilKey
		}
		if _, err := curveAlgorithm(p.Curve); err != nil {
			return Key{}, err
		}
		family = FamilyEC
	case ed25519.PublicKey:
		if len(p) != ed25519.PublicKeySize {
			return Key{}, ErrUnsupportedKey
		}
		family = FamilyOKP
	default:
		return Key{}, ErrUnsupportedKey
	}
	k := Key{family: family, public: pub}
	return k.apply(opts), nil
}

func (k Key) apply(opts []Option) Key {
	for _, opt := range opts {
		if opt != nil {
			opt(&k)
		}
	}
	return k
}

// Family reports the key variant.
func (k Key) Family() Family { return k.family }

// KeyID returns the "kid" for this key, possibly empty.
func (k Key) KeyID() string { return k.kid }

// IsZero reports whether k was never constructed.
func (k Key) IsZero() bool { return k.family == "" }

// CanSign reports whether the key holds signing material.
func (k Key) CanSign() bool {
	switch k.family {
	case FamilyOct:
		return len(k.secret) > 0
	case FamilyRSA, FamilyEC, FamilyOKP:
		return k.private != nil
	default:
		return false
	}
}

// CanVerify reports whether the key holds verification material.
func (k Key) CanVerify() bool {
	switch k.family {
	case FamilyOct:
		return len(k.secret) > 0
	case FamilyRSA, FamilyEC, FamilyOKP:
		return k.public != nil
	default:
		return false
	}
}

// Algorithm returns the declared algorithm, or the family default when the
// key was built without [WithAlgorithm].
func (k Key) Algorithm() string {
	if k.alg != "" {
		return k.alg
	}
	switch k.family {
	case FamilyOct:
		return "HS256"
	case FamilyRSA:
		return "RS256"
	case FamilyEC:
		if alg, err := curveAlgorithm(k.Curve()); err == nil {
			return alg
		}
		return ""
	case FamilyOKP:
		return "EdDSA"
	default:
		return ""
	}
}

// Declared reports whether the algorithm was set explicitly.
func (k Key) Declared() bool { return k.alg != "" }

// Curve returns the elliptic curve for EC keys and nil otherwise.
func (k Key) Curve() elliptic.Curve {
	if pub, ok := k.public.(*ecdsa.PublicKey); ok {
		return pub.Curve
	}
	return nil
}

// SigningMaterial returns the value handed to the signing primitive: a copy
// of the secret for oct keys, or the private key. ok is false when the key
// cannot sign.
func (k Key) SigningMaterial() (material any, ok bool) {
	if !k.CanSign() {
		return nil, false
	}
	if k.family == FamilyOct {
		return append([]byte(nil), k.secret...), true
	}
	return k.private, true
}

// VerificationMaterial returns the value handed to the verification
// primitive: a copy of the secret for oct keys, or the public key.
func (k Key) VerificationMaterial() (material any, ok bool) {
	if !k.CanVerify() {
		return nil, false
	}
	if k.family == FamilyOct {
		return append([]byte(nil), k.secret...), true
	}
	return k.public, true
}

// Public returns k stripped of private material. Symmetric keys are returned
// unchanged since the secret is both halves.
func (k Key) Public() Key {
	if k.family == FamilyOct {
		return k
	}
	out := k
	out.private = nil
	return out
}

// PublicKey returns the raw public key for asymmetric families.
func (k Key) PublicKey() crypto.PublicKey { return k.public }

// Private returns the raw private key for asymmetric families, if held.
func (k Key) Private() crypto.Signer { return k.private }

func curveAlgorithm(c elliptic.Curve) (string, error) {
	if c == nil {
		return "", ErrUnsupportedCurve
	}
	switch c.Params().Name {
	case "P-256":
		return "ES256", nil
	case "P-384":
		return "ES384", nil
	case "P-521":
		return "ES512", nil
	default:
		return "", ErrUnsupportedCurve
	}
}
