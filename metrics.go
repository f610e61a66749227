package goJWS

import (
	internalmetrics "github.com/MrEthical07/goJWS/internal/metrics"
)

// MetricID identifies an engine counter or latency histogram.
type MetricID = internalmetrics.MetricID

const (
	// MetricIssueSuccess counts tokens minted by Issue.
	MetricIssueSuccess = internalmetrics.MetricIssueSuccess
	// MetricSignSuccess counts successful Sign and Issue calls.
	MetricSignSuccess = internalmetrics.MetricSignSuccess
	// MetricSignFailure counts failed Sign and Issue calls.
	MetricSignFailure = internalmetrics.MetricSignFailure
	// MetricVerifySuccess counts accepted tokens.
	MetricVerifySuccess = internalmetrics.MetricVerifySuccess
	MetricVerifyParseFailure            = internalmetrics.MetricVerifyParseFailure
	MetricVerifyAlgorithmNotFound       = internalmetrics.MetricVerifyAlgorithmNotFound
	MetricVerifyKeyMismatch             = internalmetrics.MetricVerifyKeyMismatch
	MetricVerifyKeyResolutionFailure    = internalmetrics.MetricVerifyKeyResolutionFailure
	MetricVerifySignatureInvalid        = internalmetrics.MetricVerifySignatureInvalid
	MetricVerifyClaimInvalid            = internalmetrics.MetricVerifyClaimInvalid
	MetricVerifyCustomValidationFailure = internalmetrics.MetricVerifyCustomValidationFailure
	// MetricVerifyRateLimited counts verifications refused by the throttle.
	MetricVerifyRateLimited = internalmetrics.MetricVerifyRateLimited
	// MetricTokenRevoked counts Revoke calls.
	MetricTokenRevoked = internalmetrics.MetricTokenRevoked
	// MetricSignLatency is the signing latency histogram.
	MetricSignLatency = internalmetrics.MetricSignLatency
	// MetricVerifyLatency is the verification latency histogram.
	MetricVerifyLatency = internalmetrics.MetricVerifyLatency

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] configured by cfg. When Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

// MetricIDCount returns the number of defined metric slots.
func MetricIDCount() int {
	return int(metricIDCount)
}

var verifyFailureMetric = map[jwtKind]MetricID{
	kindParse:            MetricVerifyParseFailure,
	kindAlgNotFound:      MetricVerifyAlgorithmNotFound,
	kindKeyMismatch:      MetricVerifyKeyMismatch,
	kindKeyResolution:    MetricVerifyKeyResolutionFailure,
	kindSignatureInvalid: MetricVerifySignatureInvalid,
	kindClaimInvalid:     MetricVerifyClaimInvalid,
	kindCustomValidation: MetricVerifyCustomValidationFailure,
}
