package goJWS

import (
	"errors"

	"github.com/MrEthical07/goJWS/jwt"
)

var (
	// ErrRedisRequired is returned by Build when revocation or throttling is
	// enabled without a Redis client.
	ErrRedisRequired = errors.New("redis client required")
	// ErrSigningKeyRequired is returned by Issue and Sign on an engine built
	// without a signing key.
	ErrSigningKeyRequired = errors.New("signing key required")
	// ErrVerificationKeysRequired is returned by Build when no key resolver,
	// verification keys or signing key is available for Verify.
	ErrVerificationKeysRequired = errors.New("verification keys required")
	// ErrBuilderUsed is returned when Build is called twice on one builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrRevocationDisabled is returned by Revoke when revocation is off.
	ErrRevocationDisabled = errors.New("revocation disabled")
	// ErrRateLimited is returned by Verify when the calling client has
	// presented too many rejected tokens.
	ErrRateLimited = errors.New("verification rate limited")
	// ErrUnavailable wraps Redis failures outside the verification pipeline.
	ErrUnavailable = errors.New("backend unavailable")
)

// Re-exported verification sentinels so callers can stay on the root
// package for errors.Is checks.
var (
	ErrParse                = jwt.ErrParse
	ErrAlgorithmNotFound    = jwt.ErrAlgorithmNotFound
	ErrAlgorithmKeyMismatch = jwt.ErrAlgorithmKeyMismatch
	ErrKeyResolution        = jwt.ErrKeyResolution
	ErrSignatureInvalid     = jwt.ErrSignatureInvalid
	ErrClaimInvalid         = jwt.ErrClaimInvalid
	ErrTokenExpired         = jwt.ErrTokenExpired
	ErrCustomValidation     = jwt.ErrCustomValidation
)
