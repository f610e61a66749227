package middleware

import (
	"net/http"

	goJWS "github.com/MrEthical07/goJWS"
	"github.com/MrEthical07/goJWS/jwt"
)

// RequireStrict guards like [Guard] but also rejects tokens without "jti",
// so every accepted token is one the engine could revoke.
func RequireStrict[C any](engine *goJWS.Engine[C], extra ...jwt.Validator[C]) func(http.Handler) http.Handler {
	return Guard(engine, append([]jwt.Validator[C]{jwt.HasTokenID[C]()}, extra...)...)
}

// RequireAudience guards like [Guard] and additionally requires aud in the
// token's audience. Use it when one engine fronts several APIs.
func RequireAudience[C any](engine *goJWS.Engine[C], aud string) func(http.Handler) http.Handler {
	return Guard(engine, jwt.HasAudience[C](aud))
}
