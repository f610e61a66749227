package jws

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goJWS/codec"
)

var (
	// ErrMalformed is the parse failure for every compact decoding error.
	ErrMalformed = errors.New("jws: malformed compact token")
	// ErrSegmentCount is returned when the token does not have exactly 3
	// segments. JWS JSON serialization and detached payloads are not accepted.
	ErrSegmentCount = fmt.Errorf("%w: expected 3 segments", ErrMalformed)
	// ErrSegmentEncoding is returned when a segment is not unpadded base64url.
	ErrSegmentEncoding = fmt.Errorf("%w: invalid base64url segment", ErrMalformed)
	// ErrHeader is returned when the header does not decode or lacks "alg".
	ErrHeader = fmt.Errorf("%w: invalid header", ErrMalformed)
)

const separator = "."

// Parsed is a compact token split into its parts. SigningInput aliases the
// original "header.payload" text.
type Parsed struct {
	Header       Header
	RawHeader    []byte
	Payload      []byte
	Signature    []byte
	SigningInput []byte
}

// Encode returns the unpadded base64url form of b.
func Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// strictEncoding rejects non-zero trailing bits, so every segment has one
// accepted spelling.
var strictEncoding = base64.RawURLEncoding.Strict()

// Decode reads an unpadded base64url segment. Padding characters, line
// breaks and non-zero trailing bits are rejected.
func Decode(segment string) ([]byte, error) {
	// The base64 decoder skips CR and LF silently.
	if strings.ContainsAny(segment, "\r\n") {
		return nil, fmt.Errorf("%w: line break in segment", ErrSegmentEncoding)
	}
	out, err := strictEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentEncoding, err)
	}
	return out, nil
}

// SigningInput returns encodedHeader + "." + encodedPayload as bytes.
func SigningInput(encodedHeader, encodedPayload string) []byte {
	out := make([]byte, 0, len(encodedHeader)+1+len(encodedPayload))
	out = append(out, encodedHeader...)
	out = append(out, separator...)
	out = append(out, encodedPayload...)
	return out
}

// Compact appends the encoded signature to a signing input.
func Compact(signingInput, signature []byte) string {
	var b strings.Builder
	sig := Encode(signature)
	b.Grow(len(signingInput) + 1 + len(sig))
	b.Write(signingInput)
	b.WriteString(separator)
	b.WriteString(sig)
	return b.String()
}

// EncodeHeader serializes h with c and base64url-encodes it.
func EncodeHeader(h Header, c codec.Codec) (string, error) {
	if h.Algorithm == "" {
		return "", fmt.Errorf("%w: missing alg", ErrHeader)
	}
	data, err := c.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	return Encode(data), nil
}

// Parse splits compact into header, payload and signature. The header is
// decoded with c; the payload is returned undecoded.
func Parse(compact string, c codec.Codec) (*Parsed, error) {
	parts := strings.Split(compact, separator)
	if len(parts) != 3 {
		return nil, ErrSegmentCount
	}

	rawHeader, err := Decode(parts[0])
	if err != nil {
		return nil, err
	}
	payload, err := Decode(parts[1])
	if err != nil {
		return nil, err
	}
	signature, err := Decode(parts[2])
	if err != nil {
		return nil, err
	}

	var header Header
	if err := c.Unmarshal(rawHeader, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	if header.Algorithm == "" {
		return nil, fmt.Errorf("%w: missing alg", ErrHeader)
	}

	return &Parsed{
		Header:       header,
		RawHeader:    rawHeader,
		Payload:      payload,
		Signature:    signature,
		SigningInput: []byte(compact[:len(parts[0])+1+len(parts[1])]),
	}, nil
}
