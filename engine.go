package goJWS

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/goJWS/codec"
	internalaudit "github.com/MrEthical07/goJWS/internal/audit"
	"github.com/MrEthical07/goJWS/internal/rate"
	"github.com/MrEthical07/goJWS/internal/stores"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
	"github.com/MrEthical07/goJWS/resolve"
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Engine issues and verifies tokens whose extension claims have type C. It
// layers registered-claim stamping, revocation, client throttling, metrics
// and audit events over a [jwt.Manager].
//
// Engine instances are read-only after Build and safe for concurrent use.
type Engine[C any] struct {
	config      Config
	manager     *jwt.Manager[C]
	validator   jwt.Validator[C]
	signingKey  jwk.Key
	keys        *resolve.KeySet
	cache       *resolve.CachedResolver
	revocations *stores.RevocationStore
	throttle    *rate.Limiter
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	logger      *slog.Logger
	clock       func() time.Time
}

// Close flushes pending audit events and stops the dispatcher.
func (e *Engine[C]) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the
// buffer was full.
func (e *Engine[C]) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine[C]) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Manager exposes the underlying sign/verify manager.
func (e *Engine[C]) Manager() *jwt.Manager[C] {
	return e.manager
}

func (e *Engine[C]) metricInc(id MetricID) {
	if e.metrics != nil {
		e.metrics.Inc(id)
	}
}

func (e *Engine[C]) observe(id MetricID, start time.Time) {
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(id, time.Since(start))
	}
}

// Issue stamps the configured registered claims onto claims and signs the
// result. Claims the caller already set are kept, except "iat" which is
// always the current time. A token without "jti" gets a random UUID.
func (e *Engine[C]) Issue(ctx context.Context, claims Claims[C]) (string, error) {
	now := e.clock()
	if claims.Issuer == "" {
		claims.Issuer = e.config.Token.Issuer
	}
	if len(claims.Audience) == 0 && e.config.Token.Audience != "" {
		claims.Audience = gjwt.ClaimStrings{e.config.Token.Audience}
	}
	claims.IssuedAt = gjwt.NewNumericDate(now)
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = gjwt.NewNumericDate(now.Add(e.config.Token.TTL))
	}
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	token, err := e.sign(ctx, claims, auditEventTokenIssued)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricIssueSuccess)
	return token, nil
}

// Sign signs claims exactly as given.
func (e *Engine[C]) Sign(ctx context.Context, claims Claims[C]) (string, error) {
	return e.sign(ctx, claims, auditEventTokenSigned)
}

func (e *Engine[C]) sign(ctx context.Context, claims Claims[C], event string) (string, error) {
	if e.signingKey.IsZero() {
		e.metricInc(MetricSignFailure)
		return "", ErrSigningKeyRequired
	}

	start := time.Now()
	token, err := e.manager.Sign(claims, e.signingKey)
	e.observe(MetricSignLatency, start)

	header := jws.Header{Algorithm: e.signingKey.Algorithm(), KeyID: e.signingKey.KeyID()}
	if err != nil {
		e.metricInc(MetricSignFailure)
		e.logger.ErrorContext(ctx, "token signing failed",
			slog.String("kind", jwt.KindOf(err).String()),
			slog.String("alg", header.Algorithm),
			slog.String("kid", header.KeyID),
			slog.Any("error", err),
		)
		e.emitAudit(ctx, event, header, claims.RegisteredClaims, err, nil)
		return "", err
	}

	e.metricInc(MetricSignSuccess)
	e.emitAudit(ctx, event, header, claims.RegisteredClaims, nil, nil)
	return token, nil
}

// Verify runs the verification pipeline and then the extra validators.
//
// When throttling is enabled and ctx carries a client address (see
// [WithClientIP]), clients that exceeded their rejection budget get
// [ErrRateLimited] without their token being examined.
func (e *Engine[C]) Verify(ctx context.Context, compact string, extra ...jwt.Validator[C]) (*Token[C], error) {
	client := clientIPFromContext(ctx)
	if err := e.checkThrottle(ctx, client); err != nil {
		return nil, err
	}

	var opts []jwt.VerifyOption
	if len(extra) > 0 {
		all := append([]jwt.Validator[C]{e.validator}, extra...)
		opts = append(opts, jwt.WithValidator(jwt.All(all...)))
	}

	start := time.Now()
	tok, err := e.manager.Verify(ctx, compact, opts...)
	e.observe(MetricVerifyLatency, start)

	if err != nil {
		e.rejected(ctx, compact, client, err)
		if errors.Is(err, jwt.ErrRevocationUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventTokenVerified, tok.Header, tok.Claims.RegisteredClaims, nil, nil)
	return tok, nil
}

func (e *Engine[C]) checkThrottle(ctx context.Context, client string) error {
	if e.throttle == nil || client == "" {
		return nil
	}
	err := e.throttle.Check(ctx, client)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.metricInc(MetricVerifyRateLimited)
		e.emitAudit(ctx, auditEventRateLimitTripped, jws.Header{}, jwt.RegisteredClaims{}, ErrRateLimited, nil)
		return ErrRateLimited
	default:
		e.logger.WarnContext(ctx, "verification throttle unavailable", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func (e *Engine[C]) rejected(ctx context.Context, compact, client string, err error) {
	kind := jwt.KindOf(err)
	if id, ok := verifyFailureMetric[kind]; ok {
		e.metricInc(id)
	}

	header := peekHeader(compact)
	level := slog.LevelDebug
	if kind == jwt.KindKeyResolution || errors.Is(err, jwt.ErrRevocationUnavailable) {
		level = slog.LevelWarn
	}
	e.logger.LogAttrs(ctx, level, "token rejected",
		slog.String("kind", kind.String()),
		slog.String("alg", header.Algorithm),
		slog.String("kid", header.KeyID),
		slog.String("reason", reason(err)),
	)
	e.emitAudit(ctx, auditEventTokenRejected, header, jwt.RegisteredClaims{}, err, func() map[string]string {
		return map[string]string{"reason": reason(err)}
	})

	if e.throttle != nil && client != "" {
		if terr := e.throttle.RecordFailure(ctx, client); terr != nil && !errors.Is(terr, rate.ErrRateLimited) {
			e.logger.WarnContext(ctx, "recording verification failure", slog.Any("error", terr))
		}
	}
}

// Revoke denylists a verified token until it expires.
func (e *Engine[C]) Revoke(ctx context.Context, tok *Token[C]) error {
	if tok == nil {
		return fmt.Errorf("%w: nil token", stores.ErrInvalidTokenID)
	}
	var expiresAt time.Time
	if tok.Claims.ExpiresAt != nil {
		expiresAt = tok.Claims.ExpiresAt.Time
	}
	if err := e.RevokeID(ctx, tok.Claims.ID, expiresAt); err != nil {
		return err
	}
	e.emitAudit(ctx, auditEventTokenRevoked, tok.Header, tok.Claims.RegisteredClaims, nil, nil)
	return nil
}

// RevokeID denylists jti until expiresAt, or for Revocation.MaxTTL when
// expiresAt is zero.
func (e *Engine[C]) RevokeID(ctx context.Context, jti string, expiresAt time.Time) error {
	if e.revocations == nil {
		return ErrRevocationDisabled
	}
	if err := e.revocations.Revoke(ctx, jti, expiresAt, e.config.Revocation.MaxTTL); err != nil {
		if errors.Is(err, stores.ErrRevocationBackend) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	e.metricInc(MetricTokenRevoked)
	return nil
}

// IsRevoked reports whether jti is on the denylist.
func (e *Engine[C]) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if e.revocations == nil {
		return false, ErrRevocationDisabled
	}
	return e.revocations.IsRevoked(ctx, jti)
}

// PublicJWKS renders the public verification keys as a JWKS document.
// Symmetric keys are never published.
func (e *Engine[C]) PublicJWKS() ([]byte, error) {
	if e.keys != nil {
		return e.keys.PublicJWKS()
	}
	if e.signingKey.IsZero() {
		return jwk.MarshalSet()
	}
	set, err := resolve.NewKeySet(e.signingKey)
	if err != nil {
		return nil, err
	}
	return set.PublicJWKS()
}

// InvalidateKey drops kid from the resolver cache, if caching is enabled.
func (e *Engine[C]) InvalidateKey(kid string) {
	if e.cache != nil {
		e.cache.Invalidate(kid)
	}
}

func reason(err error) string {
	var jerr *jwt.Error
	if errors.As(err, &jerr) {
		return jerr.Reason()
	}
	return err.Error()
}

// peekHeader decodes the protected header for logging. Malformed input
// yields an empty header.
func peekHeader(compact string) jws.Header {
	segment, _, ok := strings.Cut(compact, ".")
	if !ok {
		return jws.Header{}
	}
	raw, err := jws.Decode(segment)
	if err != nil {
		return jws.Header{}
	}
	var h jws.Header
	if err := codec.Standard.Unmarshal(raw, &h); err != nil {
		return jws.Header{}
	}
	return h
}
