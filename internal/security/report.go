package security

import (
	"strings"
	"time"
)

// Report summarizes the verification posture of an engine.
type Report struct {
	SigningAlgorithm   string
	SigningKeyID       string
	AcceptedAlgorithms []string
	SymmetricAccepted  bool
	AsymmetricAccepted bool
	TokenTTL           time.Duration
	Leeway             time.Duration
	IssuerPinned       bool
	AudiencePinned     bool
	FutureIATChecked   bool
	RevocationActive   bool
	ThrottleActive     bool
	KeyCacheActive     bool
	KeyRetryActive     bool
	AuditActive        bool
	PublishedKeys      int
}

// ReportInput is the raw engine state a Report is derived from.
type ReportInput struct {
	SigningAlgorithm   string
	SigningKeyID       string
	AcceptedAlgorithms []string
	TokenTTL           time.Duration
	Leeway             time.Duration
	Issuer             string
	Audience           string
	MaxFutureIAT       time.Duration
	RevocationEnabled  bool
	ThrottleEnabled    bool
	MaxFailures        int
	CacheEnabled       bool
	RetryEnabled       bool
	AuditEnabled       bool
	PublishedKeys      int
}

func BuildReport(input ReportInput) Report {
	var symmetric, asymmetric bool
	for _, alg := range input.AcceptedAlgorithms {
		if strings.HasPrefix(alg, "HS") {
			symmetric = true
		} else {
			asymmetric = true
		}
	}

	return Report{
		SigningAlgorithm:   input.SigningAlgorithm,
		SigningKeyID:       input.SigningKeyID,
		AcceptedAlgorithms: append([]string(nil), input.AcceptedAlgorithms...),
		SymmetricAccepted:  symmetric,
		AsymmetricAccepted: asymmetric,
		TokenTTL:           input.TokenTTL,
		Leeway:             input.Leeway,
		IssuerPinned:       input.Issuer != "",
		AudiencePinned:     input.Audience != "",
		FutureIATChecked:   input.MaxFutureIAT > 0,
		RevocationActive:   input.RevocationEnabled,
		ThrottleActive:     input.ThrottleEnabled && input.MaxFailures > 0,
		KeyCacheActive:     input.CacheEnabled,
		KeyRetryActive:     input.RetryEnabled,
		AuditActive:        input.AuditEnabled,
		PublishedKeys:      input.PublishedKeys,
	}
}
