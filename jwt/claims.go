package jwt

import (
	"bytes"
	"encoding/json"
	"errors"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goJWS/codec"
)

// RegisteredClaims are the RFC 7519 registered claim names.
type RegisteredClaims = gjwt.RegisteredClaims

// ErrExtraNotObject is returned when the extension type does not encode to a
// JSON object.
var ErrExtraNotObject = errors.New("extension claims must encode to a JSON object")

var registeredNames = [...]string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti"}

// Claims is a token payload: registered claims plus an application defined
// extension of type C. On the wire the extension fields sit next to the
// registered ones in a single JSON object; registered names take precedence.
type Claims[C any] struct {
	RegisteredClaims
	Extra C
}

// ClaimSet is the view of a payload handed to key resolvers. Resolvers that
// need the extension fields type-assert to *Claims[C].
type ClaimSet interface {
	Registered() RegisteredClaims
}

// Registered returns a copy of the registered claims.
func (c Claims[C]) Registered() RegisteredClaims {
	return c.RegisteredClaims
}

// MarshalJSON flattens Extra into the registered claim object using the
// standard codec. A Manager flattens with its own codec instead.
func (c Claims[C]) MarshalJSON() ([]byte, error) {
	return c.encode(codec.Standard)
}

// UnmarshalJSON reads the registered claims and decodes the same object into
// Extra. When C is map[string]any the registered names are removed from it.
func (c *Claims[C]) UnmarshalJSON(data []byte) error {
	return c.decode(data, codec.Standard)
}

func (c Claims[C]) encode(cd codec.Codec) ([]byte, error) {
	extra, err := cd.Marshal(c.Extra)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(extra); !bytes.Equal(trimmed, []byte("null")) {
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, ErrExtraNotObject
		}
		if err := cd.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
	}
	for _, name := range registeredNames {
		delete(fields, name)
	}

	registered, err := cd.Marshal(c.RegisteredClaims)
	if err != nil {
		return nil, err
	}
	var reg map[string]json.RawMessage
	if err := cd.Unmarshal(registered, &reg); err != nil {
		return nil, err
	}
	for name, value := range reg {
		fields[name] = value
	}
	return cd.Marshal(fields)
}

func (c *Claims[C]) decode(data []byte, cd codec.Codec) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("claims must be a JSON object")
	}

	var reg RegisteredClaims
	if err := cd.Unmarshal(trimmed, &reg); err != nil {
		return err
	}

	var extra C
	if err := cd.Unmarshal(trimmed, &extra); err != nil {
		return err
	}
	if m, ok := any(&extra).(*map[string]any); ok && *m != nil {
		for _, name := range registeredNames {
			delete(*m, name)
		}
	}

	c.RegisteredClaims = reg
	c.Extra = extra
	return nil
}
