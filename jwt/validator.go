package jwt

import (
	"errors"
	"slices"
)

var errNoAlternatives = errors.New("no validator alternatives")

// Validator checks a verified token. A nil error means success; otherwise
// the error text is the failure reason. Validators must not mutate the token.
type Validator[C any] func(tok *Token[C]) error

// Validate runs v. A nil Validator accepts every token.
func (v Validator[C]) Validate(tok *Token[C]) error {
	if v == nil {
		return nil
	}
	return v(tok)
}

// And runs v, then next only if v succeeded.
func (v Validator[C]) And(next Validator[C]) Validator[C] {
	return All(v, next)
}

// OrElse runs v and succeeds if it does. Otherwise it runs alt and returns
// alt's outcome; v's failure reason is discarded.
func (v Validator[C]) OrElse(alt Validator[C]) Validator[C] {
	return func(tok *Token[C]) error {
		if err := v.Validate(tok); err == nil {
			return nil
		}
		return alt.Validate(tok)
	}
}

// AcceptAll is the default validator.
func AcceptAll[C any]() Validator[C] {
	return func(*Token[C]) error { return nil }
}

// All runs validators in order and fails with the first failure.
func All[C any](validators ...Validator[C]) Validator[C] {
	return func(tok *Token[C]) error {
		for _, v := range validators {
			if err := v.Validate(tok); err != nil {
				return err
			}
		}
		return nil
	}
}

// Any tries validators in order and succeeds with the first success. When
// all fail, the last failure is returned. Any with no validators fails.
func Any[C any](validators ...Validator[C]) Validator[C] {
	if len(validators) == 0 {
		return func(*Token[C]) error { return errNoAlternatives }
	}
	out := validators[0]
	for _, v := range validators[1:] {
		out = out.OrElse(v)
	}
	return out
}

// HasAudience requires "aud" to contain aud.
func HasAudience[C any](aud string) Validator[C] {
	return func(tok *Token[C]) error {
		got := tok.Claims.Audience
		if len(got) == 0 {
			return missing("aud")
		}
		if !slices.Contains(got, aud) {
			return mismatch("aud", aud)
		}
		return nil
	}
}

// HasIssuer requires "iss" to equal iss.
func HasIssuer[C any](iss string) Validator[C] {
	return equals[C]("iss", iss, func(c *Claims[C]) string { return c.Issuer })
}

// HasSubject requires "sub" to equal sub.
func HasSubject[C any](sub string) Validator[C] {
	return equals[C]("sub", sub, func(c *Claims[C]) string { return c.Subject })
}

// HasTokenID requires a non-empty "jti".
func HasTokenID[C any]() Validator[C] {
	return func(tok *Token[C]) error {
		if tok.Claims.ID == "" {
			return missing("jti")
		}
		return nil
	}
}

func equals[C any](name, want string, get func(*Claims[C]) string) Validator[C] {
	return func(tok *Token[C]) error {
		got := get(&tok.Claims)
		if got == "" {
			return missing(name)
		}
		if got != want {
			return mismatch(name, want)
		}
		return nil
	}
}

// Check validates an extension field. ok reports whether the extension value
// is acceptable; a false result fails with a mismatch on claim name.
func Check[C any](name string, ok func(extra C) bool) Validator[C] {
	return func(tok *Token[C]) error {
		if !ok(tok.Claims.Extra) {
			return mismatch(name, "")
		}
		return nil
	}
}

// Custom adapts a function over the full claims. A returned error becomes
// the failure reason.
func Custom[C any](fn func(claims *Claims[C]) error) Validator[C] {
	return func(tok *Token[C]) error {
		return fn(&tok.Claims)
	}
}
