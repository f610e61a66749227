package jwa

import (
	"errors"
	"fmt"
)

var (
	// ErrAlgorithmNotFound is returned when a registry has no entry for an id.
	ErrAlgorithmNotFound = errors.New("algorithm not found")
	// ErrAlgorithmKeyMismatch is the failure for an algorithm applied outside
	// its key family, header or capability constraints.
	ErrAlgorithmKeyMismatch = errors.New("algorithm key mismatch")
	// ErrSignatureInvalid is returned when the cryptographic check fails.
	ErrSignatureInvalid = errors.New("signature invalid")
	// ErrDuplicateAlgorithm is returned when a registry is built with a
	// repeated or empty identifier.
	ErrDuplicateAlgorithm = errors.New("duplicate algorithm identifier")
	// ErrUnsupportedWidth is returned for hash widths other than 256, 384, 512.
	ErrUnsupportedWidth = errors.New("unsupported hash width")
)

// InapplicableError reports why an algorithm refused a key or header.
type InapplicableError struct {
	Algorithm string
	Reason    string
}

func (e *InapplicableError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrAlgorithmKeyMismatch, e.Algorithm, e.Reason)
}

// Unwrap makes errors.Is(err, ErrAlgorithmKeyMismatch) hold.
func (e *InapplicableError) Unwrap() error { return ErrAlgorithmKeyMismatch }

func inapplicable(alg, format string, args ...any) error {
	return &InapplicableError{Algorithm: alg, Reason: fmt.Sprintf(format, args...)}
}
