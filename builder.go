package goJWS

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/goJWS/codec"
	internalaudit "github.com/MrEthical07/goJWS/internal/audit"
	"github.com/MrEthical07/goJWS/internal/rate"
	"github.com/MrEthical07/goJWS/internal/stores"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jwt"
	"github.com/MrEthical07/goJWS/resolve"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine] for extension claims of type C.
//
// Builder instances are single use: configure with the WithX setters, then
// call Build once.
type Builder[C any] struct {
	config Config
	redis  redis.UniversalClient

	signingKey       jwk.Key
	verificationKeys []jwk.Key
	resolver         jwt.KeyResolver
	validator        jwt.Validator[C]
	codec            codec.Codec

	auditSink AuditSink
	logger    *slog.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New[C any]() *Builder[C] {
	return &Builder[C]{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder[C]) WithConfig(cfg Config) *Builder[C] {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client used by revocation, throttling and any Redis
// backed resolver the caller wires in.
func (b *Builder[C]) WithRedis(client redis.UniversalClient) *Builder[C] {
	b.redis = client
	return b
}

// WithSigningKey sets the key Issue and Sign use. Its public half also
// verifies tokens when no other keys are configured.
func (b *Builder[C]) WithSigningKey(key jwk.Key) *Builder[C] {
	b.signingKey = key
	return b
}

// WithVerificationKeys sets a static key set for Verify, selected by kid.
func (b *Builder[C]) WithVerificationKeys(keys ...jwk.Key) *Builder[C] {
	b.verificationKeys = append([]jwk.Key(nil), keys...)
	return b
}

// WithResolver sets a custom key resolver. It takes precedence over
// WithVerificationKeys.
func (b *Builder[C]) WithResolver(r jwt.KeyResolver) *Builder[C] {
	b.resolver = r
	return b
}

// WithValidator adds an application validator that runs after the
// configured issuer and audience checks.
func (b *Builder[C]) WithValidator(v jwt.Validator[C]) *Builder[C] {
	b.validator = v
	return b
}

// WithCodec overrides the JSON codec selected by Config.Codec.
func (b *Builder[C]) WithCodec(c codec.Codec) *Builder[C] {
	b.codec = c
	return b
}

// WithLogger sets the engine logger. The default discards everything.
func (b *Builder[C]) WithLogger(logger *slog.Logger) *Builder[C] {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder[C]) WithAuditSink(sink AuditSink) *Builder[C] {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder[C]) WithMetricsEnabled(enabled bool) *Builder[C] {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles sign and verify latency histograms.
func (b *Builder[C]) WithLatencyHistograms(enabled bool) *Builder[C] {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides time.Now for claim stamping and time checks.
func (b *Builder[C]) WithClock(now func() time.Time) *Builder[C] {
	b.clock = now
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder[C]) Build() (*Engine[C], error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil && (cfg.Revocation.Enabled || cfg.Throttle.Enabled) {
		return nil, fmt.Errorf("%w: revocation and throttling store state in redis", ErrRedisRequired)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}
	tokenCodec := b.codec
	if tokenCodec == nil {
		tokenCodec = codec.Standard
		if cfg.Codec == "fast" {
			tokenCodec = codec.Fast
		}
	}

	engine := &Engine[C]{
		config:     cloneConfig(cfg),
		signingKey: b.signingKey,
		logger:     logger,
		clock:      clock,
	}

	// -------- KEYS --------
	if !b.signingKey.IsZero() && !b.signingKey.CanSign() {
		return nil, fmt.Errorf("%w: key %q has no private material", ErrSigningKeyRequired, b.signingKey.KeyID())
	}

	var base jwt.KeyResolver
	switch {
	case b.resolver != nil:
		base = b.resolver
	case len(b.verificationKeys) > 0:
		set, err := resolve.NewKeySet(b.verificationKeys...)
		if err != nil {
			return nil, err
		}
		engine.keys = set
		base = set
	case !b.signingKey.IsZero():
		set, err := resolve.NewKeySet(b.signingKey)
		if err != nil {
			return nil, err
		}
		engine.keys = set
		base = set
	default:
		return nil, ErrVerificationKeysRequired
	}

	resolver := base
	if cfg.Keys.CacheEnabled {
		engine.cache = resolve.Cached(resolver, cfg.Keys.CacheTTL)
		resolver = engine.cache
	}
	if cfg.Keys.RetryEnabled {
		resolver = resolve.Retry(resolver, resolve.RetryPolicy{
			MaxRetries:      cfg.Keys.MaxRetries,
			InitialInterval: cfg.Keys.RetryInitialInterval,
			MaxInterval:     cfg.Keys.RetryMaxInterval,
		})
	}

	// -------- REDIS STATE --------
	var revocations jwt.RevocationChecker
	if cfg.Revocation.Enabled {
		engine.revocations = stores.NewRevocationStore(b.redis, cfg.Revocation.RedisPrefix)
		revocations = engine.revocations
	}
	if cfg.Throttle.Enabled {
		engine.throttle = rate.New(b.redis, rate.Config{
			Prefix:      cfg.Throttle.RedisPrefix,
			MaxFailures: cfg.Throttle.MaxFailures,
			Window:      cfg.Throttle.Window,
		})
	}

	// -------- VALIDATION --------
	validators := make([]jwt.Validator[C], 0, 3)
	if cfg.Token.Issuer != "" {
		validators = append(validators, jwt.HasIssuer[C](cfg.Token.Issuer))
	}
	if cfg.Token.Audience != "" {
		validators = append(validators, jwt.HasAudience[C](cfg.Token.Audience))
	}
	if b.validator != nil {
		validators = append(validators, b.validator)
	}
	engine.validator = jwt.All(validators...)

	manager, err := jwt.NewManager(jwt.Config[C]{
		Algorithms:   cfg.Token.Algorithms,
		Codec:        tokenCodec,
		Resolver:     resolver,
		Validator:    engine.validator,
		Clock:        clock,
		Leeway:       cfg.Token.Leeway,
		MaxFutureIAT: cfg.Token.MaxFutureIAT,
		Type:         cfg.Token.Type,
		Revocations:  revocations,
	})
	if err != nil {
		return nil, err
	}
	if !b.signingKey.IsZero() {
		if _, err := manager.Registry().Lookup(b.signingKey.Algorithm()); err != nil {
			return nil, fmt.Errorf("signing key %q: %w", b.signingKey.KeyID(), err)
		}
	}
	engine.manager = manager

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
