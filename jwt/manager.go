package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goJWS/codec"
	"github.com/MrEthical07/goJWS/internal/async"
	"github.com/MrEthical07/goJWS/jwa"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
)

// KeyResolver supplies the verification key for a token. It may block on
// I/O and must honor ctx. Its error text becomes the KindKeyResolution reason.
type KeyResolver interface {
	ResolveKey(ctx context.Context, header jws.Header, claims ClaimSet) (jwk.Key, error)
}

// KeyResolverFunc adapts a function to [KeyResolver].
type KeyResolverFunc func(ctx context.Context, header jws.Header, claims ClaimSet) (jwk.Key, error)

// ResolveKey calls f.
func (f KeyResolverFunc) ResolveKey(ctx context.Context, header jws.Header, claims ClaimSet) (jwk.Key, error) {
	return f(ctx, header, claims)
}

// RevocationChecker reports whether a token identifier has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Config configures a [Manager].
//
// Zero values select defaults: the jwa default registry, the standard JSON
// codec, time.Now, an accept-all validator and the "JWT" type header.
type Config[C any] struct {
	Registry     *jwa.Registry
	Algorithms   []string
	Codec        codec.Codec
	Resolver     KeyResolver
	Validator    Validator[C]
	Clock        func() time.Time
	Leeway       time.Duration
	MaxFutureIAT time.Duration
	Type         string
	// Revocations, when set, is consulted for tokens carrying a "jti" once
	// the signature and time checks have passed.
	Revocations RevocationChecker
}

// Token is a verified token.
type Token[C any] struct {
	Header    jws.Header
	Claims    Claims[C]
	Raw       string
	Signature []byte
	Key       jwk.Key
}

// Manager signs and verifies tokens whose extension claims have type C.
type Manager[C any] struct {
	registry     *jwa.Registry
	codec        codec.Codec
	resolver     KeyResolver
	validator    Validator[C]
	clock        func() time.Time
	leeway       time.Duration
	maxFutureIAT time.Duration
	typ          string
	revocations  RevocationChecker
}

// NewManager validates cfg and returns a Manager.
func NewManager[C any](cfg Config[C]) (*Manager[C], error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = jwa.Default()
	}
	if len(cfg.Algorithms) > 0 {
		restricted, err := registry.Restrict(cfg.Algorithms...)
		if err != nil {
			return nil, fmt.Errorf("restrict algorithms: %w", err)
		}
		registry = restricted
	}

	m := &Manager[C]{
		registry:     registry,
		codec:        cfg.Codec,
		resolver:     cfg.Resolver,
		validator:    cfg.Validator,
		clock:        cfg.Clock,
		leeway:       cfg.Leeway,
		maxFutureIAT: cfg.MaxFutureIAT,
		typ:          strings.TrimSpace(cfg.Type),
		revocations:  cfg.Revocations,
	}
	if m.codec == nil {
		m.codec = codec.Standard
	}
	if m.validator == nil {
		m.validator = AcceptAll[C]()
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.typ == "" {
		m.typ = jws.TypeJWT
	}
	return m, nil
}

// Registry returns the registry the manager dispatches through.
func (m *Manager[C]) Registry() *jwa.Registry {
	return m.registry
}

// Sign produces a compact token for claims using the algorithm the key is
// declared for. It fails only when the key does not fit that algorithm or the
// claims cannot be encoded.
func (m *Manager[C]) Sign(claims Claims[C], key jwk.Key) (string, error) {
	alg, err := m.registry.Lookup(key.Algorithm())
	if err != nil {
		return "", newError(KindAlgorithmNotFound, err)
	}

	header := jws.Header{Algorithm: alg.ID(), KeyID: key.KeyID(), Type: m.typ}
	encodedHeader, err := jws.EncodeHeader(header, m.codec)
	if err != nil {
		return "", newError(KindParse, err)
	}
	payload, err := claims.encode(m.codec)
	if err != nil {
		return "", newError(KindParse, fmt.Errorf("marshal claims: %w", err))
	}

	signingInput := jws.SigningInput(encodedHeader, jws.Encode(payload))
	signature, err := alg.Sign(key, header, signingInput)
	if err != nil {
		return "", newError(KindAlgorithmKeyMismatch, err)
	}
	return jws.Compact(signingInput, signature), nil
}

// VerifyOption overrides Manager defaults for one Verify call.
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	validator any
	clock     func() time.Time
}

// WithValidator replaces the configured validator for one call. The
// validator's type parameter must match the Manager's.
func WithValidator[C any](v Validator[C]) VerifyOption {
	return func(o *verifyOptions) {
		o.validator = v
	}
}

// WithClock replaces the configured clock for one call.
func WithClock(now func() time.Time) VerifyOption {
	return func(o *verifyOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// Verify parses and checks compact. Stages run in order and stop at the
// first failure: parse, claims decoding, key resolution, signature, time
// claims, revocation, validator.
func (m *Manager[C]) Verify(ctx context.Context, compact string, opts ...VerifyOption) (*Token[C], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := verifyOptions{validator: m.validator, clock: m.clock}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	validator, ok := o.validator.(Validator[C])
	if !ok {
		return nil, newError(KindCustomValidation, fmt.Errorf("validator type %T does not match claims", o.validator))
	}

	parsed, err := jws.Parse(compact, m.codec)
	if err != nil {
		return nil, newError(KindParse, err)
	}

	var claims Claims[C]
	if err := claims.decode(parsed.Payload, m.codec); err != nil {
		return nil, newError(KindParse, fmt.Errorf("decode claims: %w", err))
	}

	key, err := m.resolveKey(ctx, parsed.Header, &claims)
	if err != nil {
		return nil, newError(KindKeyResolution, err)
	}

	alg, err := m.registry.Lookup(parsed.Header.Algorithm)
	if err != nil {
		return nil, newError(KindAlgorithmNotFound, err)
	}
	if err := alg.Verify(key, parsed.Header, parsed.SigningInput, parsed.Signature); err != nil {
		if errors.Is(err, jwa.ErrAlgorithmKeyMismatch) {
			return nil, newError(KindAlgorithmKeyMismatch, err)
		}
		return nil, newError(KindSignatureInvalid, err)
	}

	if err := m.checkTime(&claims, o.clock()); err != nil {
		return nil, newError(KindClaimInvalid, err)
	}
	if err := m.checkRevoked(ctx, claims.ID); err != nil {
		return nil, newError(KindClaimInvalid, err)
	}

	tok := &Token[C]{
		Header:    parsed.Header,
		Claims:    claims,
		Raw:       compact,
		Signature: parsed.Signature,
		Key:       key,
	}
	if err := validator.Validate(tok); err != nil {
		return nil, newError(KindCustomValidation, err)
	}
	return tok, nil
}

func (m *Manager[C]) resolveKey(ctx context.Context, header jws.Header, claims *Claims[C]) (jwk.Key, error) {
	if m.resolver == nil {
		return jwk.Key{}, errors.New("no key resolver configured")
	}
	future := async.Go(ctx, func(ctx context.Context) (jwk.Key, error) {
		return m.resolver.ResolveKey(ctx, header, claims)
	})
	key, err := future.Await(ctx)
	if err != nil {
		return jwk.Key{}, err
	}
	if key.IsZero() {
		return jwk.Key{}, errors.New("resolver returned no key")
	}
	return key, nil
}

func (m *Manager[C]) checkRevoked(ctx context.Context, jti string) error {
	if m.revocations == nil || jti == "" {
		return nil
	}
	revoked, err := m.revocations.IsRevoked(ctx, jti)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (m *Manager[C]) checkTime(claims *Claims[C], now time.Time) error {
	if exp := claims.ExpiresAt; exp != nil {
		if !now.Before(exp.Add(m.leeway)) {
			return ErrTokenExpired
		}
	}
	if nbf := claims.NotBefore; nbf != nil {
		if now.Add(m.leeway).Before(nbf.Time) {
			return ErrTokenNotYetValid
		}
	}
	if iat := claims.IssuedAt; iat != nil && m.maxFutureIAT > 0 {
		if iat.After(now.Add(m.maxFutureIAT)) {
			return ErrTokenIssuedInFuture
		}
	}
	return nil
}
