package goJWS

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goJWS/jwa"
)

// Config holds every tunable of an [Engine]. Obtain defaults from
// [DefaultConfig] and adjust fields before passing it to [Builder.WithConfig].
type Config struct {
	Token      TokenConfig
	Keys       KeysConfig
	Revocation RevocationConfig
	Throttle   ThrottleConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Codec      string // "standard" (default) or "fast"
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the registered claims stamped by [Engine.Issue] and
// checked by [Engine.Verify].
type TokenConfig struct {
	// Issuer is stamped as "iss" and, when set, required on verification.
	Issuer string
	// Audience is stamped as "aud" and, when set, required on verification.
	Audience string
	// TTL is the lifetime Issue gives a token.
	TTL time.Duration
	// Leeway is the clock skew tolerated on exp and nbf.
	Leeway time.Duration
	// MaxFutureIAT rejects tokens issued further in the future. Zero disables.
	MaxFutureIAT time.Duration
	// Algorithms pins the accepted algorithm identifiers. Empty accepts every
	// algorithm in the default registry.
	Algorithms []string
	// Type is the "typ" header written on signing.
	Type string
}

/*
====================================
KEYS CONFIG
====================================
*/

// KeysConfig wraps the verification key resolver.
type KeysConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration

	RetryEnabled         bool
	MaxRetries           uint64
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig enables the Redis token denylist.
type RevocationConfig struct {
	Enabled     bool
	RedisPrefix string
	// MaxTTL bounds how long a token without "exp" stays revoked.
	MaxTTL time.Duration
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig limits how many rejected tokens one client (see
// [WithClientIP]) may present per window.
type ThrottleConfig struct {
	Enabled     bool
	RedisPrefix string
	MaxFailures int
	Window      time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration a new [Builder] starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:  15 * time.Minute,
			Type: "JWT",
		},
		Keys: KeysConfig{
			CacheEnabled:         false,
			CacheTTL:             5 * time.Minute,
			RetryEnabled:         false,
			MaxRetries:           3,
			RetryInitialInterval: 50 * time.Millisecond,
			RetryMaxInterval:     time.Second,
		},
		Revocation: RevocationConfig{
			Enabled:     false,
			RedisPrefix: "jrv",
			MaxTTL:      24 * time.Hour,
		},
		Throttle: ThrottleConfig{
			Enabled:     false,
			RedisPrefix: "jrf",
			MaxFailures: 20,
			Window:      time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Codec: "standard",
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.Algorithms != nil {
		out.Token.Algorithms = append([]string(nil), cfg.Token.Algorithms...)
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	// Token
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}
	if c.Token.MaxFutureIAT < 0 || c.Token.MaxFutureIAT > 24*time.Hour {
		return errors.New("Token MaxFutureIAT must be between 0 and 24h")
	}
	if c.Token.Issuer != "" && strings.TrimSpace(c.Token.Issuer) == "" {
		return errors.New("Token Issuer must not be blank")
	}
	if c.Token.Audience != "" && strings.TrimSpace(c.Token.Audience) == "" {
		return errors.New("Token Audience must not be blank")
	}
	if strings.TrimSpace(c.Token.Type) == "" {
		return errors.New("Token Type must not be empty")
	}
	for _, alg := range c.Token.Algorithms {
		if _, err := jwa.Default().Lookup(alg); err != nil {
			return errors.New("Token Algorithms contains unsupported algorithm " + alg)
		}
	}

	// Keys
	if c.Keys.CacheEnabled && c.Keys.CacheTTL <= 0 {
		return errors.New("Keys CacheTTL must be > 0 when CacheEnabled is true")
	}
	if c.Keys.RetryEnabled {
		if c.Keys.RetryInitialInterval <= 0 {
			return errors.New("Keys RetryInitialInterval must be > 0 when RetryEnabled is true")
		}
		if c.Keys.RetryMaxInterval < c.Keys.RetryInitialInterval {
			return errors.New("Keys RetryMaxInterval must be >= RetryInitialInterval")
		}
	}

	// Revocation
	if c.Revocation.Enabled {
		if c.Revocation.RedisPrefix == "" {
			return errors.New("Revocation RedisPrefix must not be empty")
		}
		if c.Revocation.MaxTTL <= 0 {
			return errors.New("Revocation MaxTTL must be > 0")
		}
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.RedisPrefix == "" {
			return errors.New("Throttle RedisPrefix must not be empty")
		}
		if c.Throttle.MaxFailures <= 0 {
			return errors.New("Throttle MaxFailures must be > 0")
		}
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle Window must be > 0")
		}
	}
	if c.Throttle.Enabled && c.Revocation.Enabled && c.Throttle.RedisPrefix == c.Revocation.RedisPrefix {
		return errors.New("Throttle and Revocation must use distinct Redis prefixes")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	if c.Codec != "standard" && c.Codec != "fast" {
		return errors.New("Codec must be \"standard\" or \"fast\"")
	}

	return nil
}
