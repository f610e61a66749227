package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	goJWS "github.com/MrEthical07/goJWS"
	"github.com/MrEthical07/goJWS/jwt"
)

type tokenContextKey[C any] struct{}

// TokenFromContext returns the verified token stored by [Guard]. C must
// match the claims type of the guarding engine.
func TokenFromContext[C any](ctx context.Context) (*goJWS.Token[C], bool) {
	tok, ok := ctx.Value(tokenContextKey[C]{}).(*goJWS.Token[C])
	return tok, ok
}

// Guard verifies the bearer token of every request with engine.Verify and
// the extra validators. Accepted tokens are stored in the request context.
//
// Rejected tokens get 401, throttled clients 429 and backend failures 503.
// The response body never says why a token was rejected.
func Guard[C any](engine *goJWS.Engine[C], extra ...jwt.Validator[C]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				unauthorized(w)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			if ip := clientIP(r); ip != "" {
				ctx = goJWS.WithClientIP(ctx, ip)
			}

			tok, err := engine.Verify(ctx, token, extra...)
			switch {
			case err == nil:
			case errors.Is(err, goJWS.ErrRateLimited):
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			case errors.Is(err, goJWS.ErrUnavailable):
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			default:
				unauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, tokenContextKey[C]{}, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
