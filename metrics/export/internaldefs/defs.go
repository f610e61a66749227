package internaldefs

import (
	goJWS "github.com/MrEthical07/goJWS"
)

// Source is what every exporter reads from. [goJWS.Engine] satisfies it for
// any claims type.
type Source interface {
	MetricsSnapshot() goJWS.MetricsSnapshot
	AuditDropped() uint64
}

// CounterDef binds a counter slot to its exported name.
type CounterDef struct {
	ID   goJWS.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram slot to its exported name.
type HistogramDef struct {
	ID   goJWS.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter name for events lost to a full audit buffer.
const AuditDroppedName = "gojws_audit_dropped_total"

// AuditDroppedHelp is the help text for [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goJWS.MetricIssueSuccess, Name: "gojws_issue_success_total", Help: "Tokens minted by Issue."},
	{ID: goJWS.MetricSignSuccess, Name: "gojws_sign_success_total", Help: "Successful signing operations."},
	{ID: goJWS.MetricSignFailure, Name: "gojws_sign_failure_total", Help: "Failed signing operations."},
	{ID: goJWS.MetricVerifySuccess, Name: "gojws_verify_success_total", Help: "Accepted tokens."},
	{ID: goJWS.MetricVerifyParseFailure, Name: "gojws_verify_parse_failure_total", Help: "Tokens rejected as malformed."},
	{ID: goJWS.MetricVerifyAlgorithmNotFound, Name: "gojws_verify_algorithm_not_found_total", Help: "Tokens naming an algorithm outside the accepted set."},
	{ID: goJWS.MetricVerifyKeyMismatch, Name: "gojws_verify_key_mismatch_total", Help: "Tokens whose resolved key does not fit the algorithm."},
	{ID: goJWS.MetricVerifyKeyResolutionFailure, Name: "gojws_verify_key_resolution_failure_total", Help: "Verifications where no key could be resolved."},
	{ID: goJWS.MetricVerifySignatureInvalid, Name: "gojws_verify_signature_invalid_total", Help: "Tokens with a bad signature."},
	{ID: goJWS.MetricVerifyClaimInvalid, Name: "gojws_verify_claim_invalid_total", Help: "Tokens failing a time-based or revocation claim check."},
	{ID: goJWS.MetricVerifyCustomValidationFailure, Name: "gojws_verify_custom_validation_failure_total", Help: "Tokens failing a validator."},
	{ID: goJWS.MetricVerifyRateLimited, Name: "gojws_verify_rate_limited_total", Help: "Verifications refused by the failure throttle."},
	{ID: goJWS.MetricTokenRevoked, Name: "gojws_token_revoked_total", Help: "Revoked token IDs."},
}

// HistogramDefs lists every latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: goJWS.MetricSignLatency, Name: "gojws_sign_latency_seconds", Help: "Signing latency histogram."},
	{ID: goJWS.MetricVerifyLatency, Name: "gojws_verify_latency_seconds", Help: "Verification latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's buckets, in seconds.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// HistogramUpperBounds mirrors HistogramBounds without the +Inf bucket.
var HistogramUpperBounds = []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.025}

// HistogramBoundSuffix is HistogramBounds in a form usable inside a metric name.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_005",
	"0_025",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero filling or
// truncating as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into the running totals
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
