package jwa

import (
	"crypto"
	"crypto/rsa"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"
	"strconv"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
)

// Algorithm signs and verifies a signing input with a key of one family.
//
// Sign and Verify return an error wrapping [ErrAlgorithmKeyMismatch] when the
// header "alg" is not [Algorithm.ID], the key family differs from
// [Algorithm.Family], the key declares a different algorithm, or the key lacks
// the needed capability. Verify returns [ErrSignatureInvalid] when the
// signature does not match. Implementations are safe for concurrent use.
type Algorithm interface {
	ID() string
	Family() jwk.Family
	Sign(key jwk.Key, header jws.Header, signingInput []byte) ([]byte, error)
	Verify(key jwk.Key, header jws.Header, signingInput, signature []byte) error
}

type signatureAlgorithm struct {
	id     string
	family jwk.Family
	curve  string
	method gjwt.SigningMethod
}

func (a *signatureAlgorithm) ID() string         { return a.id }
func (a *signatureAlgorithm) Family() jwk.Family { return a.family }

func (a *signatureAlgorithm) check(key jwk.Key, header jws.Header) error {
	if header.Algorithm != a.id {
		return inapplicable(a.id, "header declares %q", header.Algorithm)
	}
	if key.Family() != a.family {
		return inapplicable(a.id, "key family %q, want %q", key.Family(), a.family)
	}
	if key.Declared() && key.Algorithm() != a.id {
		return inapplicable(a.id, "key declared for %q", key.Algorithm())
	}
	if a.curve != "" {
		curve := key.Curve()
		if curve == nil || curve.Params().Name != a.curve {
			return inapplicable(a.id, "key curve does not match %s", a.curve)
		}
	}
	return nil
}

func (a *signatureAlgorithm) Sign(key jwk.Key, header jws.Header, signingInput []byte) ([]byte, error) {
	if err := a.check(key, header); err != nil {
		return nil, err
	}
	material, ok := key.SigningMaterial()
	if !ok {
		return nil, inapplicable(a.id, "key cannot sign")
	}
	sig, err := a.method.Sign(string(signingInput), material)
	if err != nil {
		return nil, inapplicable(a.id, "sign: %v", err)
	}
	return sig, nil
}

func (a *signatureAlgorithm) Verify(key jwk.Key, header jws.Header, signingInput, signature []byte) error {
	if err := a.check(key, header); err != nil {
		return err
	}
	material, ok := key.VerificationMaterial()
	if !ok {
		return inapplicable(a.id, "key cannot verify")
	}
	if err := a.method.Verify(string(signingInput), signature, material); err != nil {
		if errors.Is(err, gjwt.ErrInvalidKeyType) || errors.Is(err, gjwt.ErrInvalidKey) {
			return inapplicable(a.id, "verify: %v", err)
		}
		return ErrSignatureInvalid
	}
	return nil
}

func hashForWidth(width int) (crypto.Hash, error) {
	switch width {
	case 256:
		return crypto.SHA256, nil
	case 384:
		return crypto.SHA384, nil
	case 512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
}

// HMAC returns HS256, HS384 or HS512 for width.
func HMAC(width int) (Algorithm, error) {
	hash, err := hashForWidth(width)
	if err != nil {
		return nil, err
	}
	id := "HS" + strconv.Itoa(width)
	return &signatureAlgorithm{
		id:     id,
		family: jwk.FamilyOct,
		method: &gjwt.SigningMethodHMAC{Name: id, Hash: hash},
	}, nil
}

// RSA returns RS256, RS384 or RS512 (PKCS#1 v1.5) for width.
func RSA(width int) (Algorithm, error) {
	hash, err := hashForWidth(width)
	if err != nil {
		return nil, err
	}
	id := "RS" + strconv.Itoa(width)
	return &signatureAlgorithm{
		id:     id,
		family: jwk.FamilyRSA,
		method: &gjwt.SigningMethodRSA{Name: id, Hash: hash},
	}, nil
}

// RSAPSS returns PS256, PS384 or PS512 for width. Signatures use a salt as
// long as the digest; verification accepts any salt length.
func RSAPSS(width int) (Algorithm, error) {
	hash, err := hashForWidth(width)
	if err != nil {
		return nil, err
	}
	id := "PS" + strconv.Itoa(width)
	return &signatureAlgorithm{
		id:     id,
		family: jwk.FamilyRSA,
		method: &gjwt.SigningMethodRSAPSS{
			SigningMethodRSA: &gjwt.SigningMethodRSA{Name: id, Hash: hash},
			Options:          &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
			VerifyOptions:    &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto},
		},
	}, nil
}

var ecdsaParams = map[int]struct {
	curve     string
	keySize   int
	curveBits int
}{
	256: {curve: "P-256", keySize: 32, curveBits: 256},
	384: {curve: "P-384", keySize: 48, curveBits: 384},
	512: {curve: "P-521", keySize: 66, curveBits: 521},
}

// ECDSA returns ES256 (P-256), ES384 (P-384) or ES512 (P-521) for width.
func ECDSA(width int) (Algorithm, error) {
	hash, err := hashForWidth(width)
	if err != nil {
		return nil, err
	}
	params := ecdsaParams[width]
	id := "ES" + strconv.Itoa(width)
	return &signatureAlgorithm{
		id:     id,
		family: jwk.FamilyEC,
		curve:  params.curve,
		method: &gjwt.SigningMethodECDSA{
			Name:      id,
			Hash:      hash,
			KeySize:   params.keySize,
			CurveBits: params.curveBits,
		},
	}, nil
}

// EdDSA returns the Ed25519 algorithm.
func EdDSA() Algorithm {
	return &signatureAlgorithm{
		id:     "EdDSA",
		family: jwk.FamilyOKP,
		method: gjwt.SigningMethodEdDSA,
	}
}
