package goJWS

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a configuration warning.
type LintSeverity uint8

const (
	// LintInfo marks settings worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks settings that weaken verification.
	LintWarn
	// LintHigh marks settings that should not reach production.
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding of [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (ws LintWarnings) BySeverity(min LintSeverity) LintWarnings {
	var out LintWarnings
	for _, w := range ws {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError returns an error listing every warning at or above min, or nil.
func (ws LintWarnings) AsError(min LintSeverity) error {
	hits := ws.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, len(hits))
	for i, w := range hits {
		parts[i] = fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message)
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that are valid but risky. It never fails; use
// Validate for hard errors.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.Token.Leeway > 30*time.Second {
		add("leeway_large", LintWarn, "leeway above 30s accepts noticeably stale tokens")
	}
	if c.Token.TTL > 24*time.Hour {
		add("token_ttl_long", LintWarn, "tokens live longer than a day")
	}
	if c.Token.TTL > time.Hour && !c.Revocation.Enabled {
		add("long_ttl_without_revocation", LintHigh, "tokens live over an hour and cannot be revoked")
	}
	if c.Token.Issuer == "" {
		add("issuer_unchecked", LintWarn, "tokens from any issuer are accepted")
	}
	if c.Token.Audience == "" {
		add("audience_unchecked", LintWarn, "tokens for any audience are accepted")
	}
	if c.Token.MaxFutureIAT == 0 {
		add("future_iat_unchecked", LintInfo, "tokens issued in the future are accepted")
	}

	symmetric, asymmetric := algorithmFamilies(c.Token.Algorithms)
	switch {
	case len(c.Token.Algorithms) == 0:
		add("algorithms_unpinned", LintWarn, "every registered algorithm is accepted; pin the ones your keys use")
	case symmetric && asymmetric:
		add("mixed_algorithm_families", LintHigh, "HMAC and public-key algorithms are both accepted")
	}

	if !c.Throttle.Enabled {
		add("throttle_disabled", LintInfo, "clients may present rejected tokens without limit")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "no audit trail for verification outcomes")
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		add("audit_blocking", LintWarn, "a slow audit sink will stall Issue and Verify")
	}
	if c.Keys.RetryEnabled && !c.Keys.CacheEnabled {
		add("retry_without_cache", LintInfo, "every verification may retry the key source")
	}

	return ws
}

func algorithmFamilies(algs []string) (symmetric, asymmetric bool) {
	for _, alg := range algs {
		if strings.HasPrefix(alg, "HS") {
			symmetric = true
		} else {
			asymmetric = true
		}
	}
	return symmetric, asymmetric
}

// HighSecurityConfig returns a preset with pinned asymmetric algorithms,
// short lifetimes, revocation, throttling and auditing enabled. Callers
// must still set Issuer and Audience, and supply a Redis client.
func HighSecurityConfig() Config {
	cfg := defaultConfig()
	cfg.Token.TTL = 5 * time.Minute
	cfg.Token.Leeway = 5 * time.Second
	cfg.Token.MaxFutureIAT = 30 * time.Second
	cfg.Token.Algorithms = []string{"ES256", "EdDSA"}
	cfg.Revocation.Enabled = true
	cfg.Throttle.Enabled = true
	cfg.Throttle.MaxFailures = 10
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Keys.CacheEnabled = true
	return cfg
}
