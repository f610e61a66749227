package jwt

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goJWS/jwa"
)

// Kind is the closed set of sign and verify failure categories.
type Kind uint8

const (
	// KindParse covers malformed segments, bad base64url and undecodable
	// header or claims, and claims that cannot be encoded when signing.
	KindParse Kind = iota + 1
	// KindAlgorithmNotFound means the "alg" is absent from the registry.
	KindAlgorithmNotFound
	// KindAlgorithmKeyMismatch means the key does not fit the algorithm.
	KindAlgorithmKeyMismatch
	// KindKeyResolution carries the resolver's failure reason.
	KindKeyResolution
	// KindSignatureInvalid means the cryptographic check failed.
	KindSignatureInvalid
	// KindClaimInvalid covers exp, nbf and iat checks.
	KindClaimInvalid
	// KindCustomValidation carries the validator's failure reason.
	KindCustomValidation
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse_error"
	case KindAlgorithmNotFound:
		return "algorithm_not_found"
	case KindAlgorithmKeyMismatch:
		return "algorithm_key_mismatch"
	case KindKeyResolution:
		return "key_resolution_error"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindClaimInvalid:
		return "claim_invalid"
	case KindCustomValidation:
		return "custom_validation_failed"
	default:
		return "unknown"
	}
}

var (
	// ErrParse matches every KindParse error.
	ErrParse = errors.New("token malformed")
	// ErrAlgorithmNotFound matches every KindAlgorithmNotFound error.
	ErrAlgorithmNotFound = jwa.ErrAlgorithmNotFound
	// ErrAlgorithmKeyMismatch matches every KindAlgorithmKeyMismatch error.
	ErrAlgorithmKeyMismatch = jwa.ErrAlgorithmKeyMismatch
	// ErrKeyResolution matches every KindKeyResolution error.
	ErrKeyResolution = errors.New("key resolution failed")
	// ErrSignatureInvalid matches KindSignatureInvalid errors and, since both
	// are detected at the signature stage, KindAlgorithmNotFound and
	// KindAlgorithmKeyMismatch errors returned by Verify.
	ErrSignatureInvalid = jwa.ErrSignatureInvalid
	// ErrClaimInvalid matches every KindClaimInvalid error and any claim
	// check failure reported by a validator.
	ErrClaimInvalid = errors.New("claim invalid")
	// ErrCustomValidation matches every KindCustomValidation error.
	ErrCustomValidation = errors.New("custom validation failed")

	// ErrTokenExpired is returned when now >= exp.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrClaimInvalid)
	// ErrTokenNotYetValid is returned when now < nbf.
	ErrTokenNotYetValid = fmt.Errorf("%w: token not valid yet", ErrClaimInvalid)
	// ErrTokenIssuedInFuture is returned when iat is beyond the allowed skew.
	ErrTokenIssuedInFuture = fmt.Errorf("%w: token issued in the future", ErrClaimInvalid)
	// ErrTokenRevoked is returned when the token's "jti" is on the denylist.
	ErrTokenRevoked = fmt.Errorf("%w: token revoked", ErrClaimInvalid)
	// ErrRevocationUnavailable is returned when the denylist cannot be read.
	// The token is rejected.
	ErrRevocationUnavailable = fmt.Errorf("%w: revocation check unavailable", ErrClaimInvalid)
	// ErrClaimMissing is returned by validators when a required claim is absent.
	ErrClaimMissing = fmt.Errorf("%w: missing", ErrClaimInvalid)
	// ErrClaimMismatch is returned by validators when a claim has the wrong value.
	ErrClaimMismatch = fmt.Errorf("%w: mismatch", ErrClaimInvalid)
)

// Error is the failure returned by Sign and Verify.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return e.sentinel().Error() + ": " + e.Err.Error()
}

// Reason is the human readable cause without the kind prefix.
func (e *Error) Reason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	if target == e.sentinel() {
		return true
	}
	switch e.Kind {
	case KindAlgorithmNotFound, KindAlgorithmKeyMismatch:
		return target == ErrSignatureInvalid
	}
	return false
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindParse:
		return ErrParse
	case KindAlgorithmNotFound:
		return ErrAlgorithmNotFound
	case KindAlgorithmKeyMismatch:
		return ErrAlgorithmKeyMismatch
	case KindKeyResolution:
		return ErrKeyResolution
	case KindSignatureInvalid:
		return ErrSignatureInvalid
	case KindClaimInvalid:
		return ErrClaimInvalid
	case KindCustomValidation:
		return ErrCustomValidation
	default:
		return errors.New("unknown token error")
	}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ClaimError describes a failed registered or extension claim check.
type ClaimError struct {
	Claim    string
	Expected string
	Err      error
}

func (e *ClaimError) Error() string {
	if errors.Is(e.Err, ErrClaimMissing) {
		return fmt.Sprintf("claim %q missing", e.Claim)
	}
	if e.Expected != "" {
		return fmt.Sprintf("claim %q mismatch: expected %q", e.Claim, e.Expected)
	}
	return fmt.Sprintf("claim %q mismatch", e.Claim)
}

func (e *ClaimError) Unwrap() error { return e.Err }

func missing(claim string) error {
	return &ClaimError{Claim: claim, Err: ErrClaimMissing}
}

func mismatch(claim, expected string) error {
	return &ClaimError{Claim: claim, Expected: expected, Err: ErrClaimMismatch}
}
