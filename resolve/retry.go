package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

// RetryPolicy bounds how [Retry] repeats a failing resolver.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries three times starting at 50ms.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
}

// Retry wraps inner with exponential backoff. Lookups that cannot succeed
// on a second attempt (unknown kid, missing kid, revoked token, invalid key
// documents) fail immediately.
func Retry(inner jwt.KeyResolver, policy RetryPolicy) jwt.KeyResolver {
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	return jwt.KeyResolverFunc(func(ctx context.Context, h jws.Header, claims jwt.ClaimSet) (jwk.Key, error) {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = policy.InitialInterval
		exp.MaxInterval = policy.MaxInterval
		exp.MaxElapsedTime = 0

		b := backoff.WithContext(backoff.WithMaxRetries(exp, policy.MaxRetries), ctx)
		return backoff.RetryWithData(func() (jwk.Key, error) {
			key, err := inner.ResolveKey(ctx, h, claims)
			if err != nil && permanent(err) {
				return jwk.Key{}, backoff.Permanent(err)
			}
			return key, err
		}, b)
	})
}

func permanent(err error) bool {
	switch {
	case errors.Is(err, ErrKeyNotFound),
		errors.Is(err, ErrKeyIDRequired),
		errors.Is(err, jwk.ErrInvalidJWK),
		errors.Is(err, jwk.ErrInvalidPEM),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
