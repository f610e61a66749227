package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
)

type profile struct {
	Role  string `json:"role,omitempty"`
	Admin bool   `json:"admin,omitempty"`
}

var (
	testNow = time.Unix(1_700_000_000, 0)

	rsaOnce sync.Once
	rsaKey  *rsa.PrivateKey
	rsaErr  error
)

func fixedClock() time.Time { return testNow }

func sharedRSA(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	rsaOnce.Do(func() {
		rsaKey, rsaErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if rsaErr != nil {
		t.Fatalf("generate rsa key: %v", rsaErr)
	}
	return rsaKey
}

// signingKey returns a private key declared for alg. RSA material is shared
// across algorithms to keep the suite fast.
func signingKey(t testing.TB, alg string) jwk.Key {
	t.Helper()
	switch alg {
	case "RS256", "RS384", "RS512", "PS256", "PS384", "PS512":
		k, err := jwk.NewPrivate(sharedRSA(t), jwk.WithAlgorithm(alg), jwk.WithKeyID("rsa-"+alg))
		if err != nil {
			t.Fatalf("wrap rsa key: %v", err)
		}
		return k
	default:
		k, err := jwk.Generate(alg)
		if err != nil {
			t.Fatalf("generate %s key: %v", alg, err)
		}
		return k
	}
}

func staticResolver(key jwk.Key) KeyResolver {
	return KeyResolverFunc(func(context.Context, jws.Header, ClaimSet) (jwk.Key, error) {
		return key, nil
	})
}

func newTestManager(t testing.TB, cfg Config[profile]) *Manager[profile] {
	t.Helper()
	if cfg.Clock == nil {
		cfg.Clock = fixedClock
	}
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func validClaims() Claims[profile] {
	return Claims[profile]{
		RegisteredClaims: RegisteredClaims{
			Issuer:    "issuer.example",
			Subject:   "alice",
			Audience:  gjwt.ClaimStrings{"api"},
			ExpiresAt: gjwt.NewNumericDate(testNow.Add(10 * time.Minute)),
			NotBefore: gjwt.NewNumericDate(testNow.Add(-time.Minute)),
			IssuedAt:  gjwt.NewNumericDate(testNow.Add(-time.Minute)),
			ID:        "token-1",
		},
		Extra: profile{Role: "editor"},
	}
}

func sameDate(a, b *gjwt.NumericDate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Time.Equal(b.Time)
}

func assertSameClaims(t *testing.T, want, got Claims[profile]) {
	t.Helper()
	if want.Issuer != got.Issuer || want.Subject != got.Subject || want.ID != got.ID {
		t.Fatalf("registered string claims differ: want %+v, got %+v", want.RegisteredClaims, got.RegisteredClaims)
	}
	if len(want.Audience) != len(got.Audience) {
		t.Fatalf("audience differs: want %v, got %v", want.Audience, got.Audience)
	}
	for i := range want.Audience {
		if want.Audience[i] != got.Audience[i] {
			t.Fatalf("audience differs: want %v, got %v", want.Audience, got.Audience)
		}
	}
	if !sameDate(want.ExpiresAt, got.ExpiresAt) || !sameDate(want.NotBefore, got.NotBefore) || !sameDate(want.IssuedAt, got.IssuedAt) {
		t.Fatalf("time claims differ: want %+v, got %+v", want.RegisteredClaims, got.RegisteredClaims)
	}
	if want.Extra != got.Extra {
		t.Fatalf("extension claims differ: want %+v, got %+v", want.Extra, got.Extra)
	}
}
