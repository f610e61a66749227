package goJWS

import (
	"github.com/MrEthical07/goJWS/internal/security"
)

// SecurityReport summarizes the verification posture of an engine.
type SecurityReport = security.Report

// SecurityReport describes the accepted algorithms and which protections
// (revocation, throttling, key caching, auditing) are active.
func (e *Engine[C]) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	published := 0
	if e.keys != nil {
		published = e.keys.Len()
	}

	return security.BuildReport(security.ReportInput{
		SigningAlgorithm:   e.signingKey.Algorithm(),
		SigningKeyID:       e.signingKey.KeyID(),
		AcceptedAlgorithms: e.manager.Registry().IDs(),
		TokenTTL:           e.config.Token.TTL,
		Leeway:             e.config.Token.Leeway,
		Issuer:             e.config.Token.Issuer,
		Audience:           e.config.Token.Audience,
		MaxFutureIAT:       e.config.Token.MaxFutureIAT,
		RevocationEnabled:  e.revocations != nil,
		ThrottleEnabled:    e.throttle != nil,
		MaxFailures:        e.config.Throttle.MaxFailures,
		CacheEnabled:       e.cache != nil,
		RetryEnabled:       e.config.Keys.RetryEnabled,
		AuditEnabled:       e.audit != nil,
		PublishedKeys:      published,
	})
}
