package jwt

import (
	"context"
	"crypto/elliptic"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goJWS/codec"
	"github.com/MrEthical07/goJWS/jwa"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
)

func TestRoundTripEveryAlgorithm(t *testing.T) {
	for _, alg := range jwa.Default().IDs() {
		t.Run(alg, func(t *testing.T) {
			key := signingKey(t, alg)
			for name, c := range map[string]codec.Codec{"standard": codec.Standard, "fast": codec.Fast} {
				m := newTestManager(t, Config[profile]{Resolver: staticResolver(key.Public()), Codec: c})

				claims := validClaims()
				token, err := m.Sign(claims, key)
				if err != nil {
					t.Fatalf("%s: sign: %v", name, err)
				}
				if strings.Contains(token, "=") {
					t.Fatalf("%s: token contains padding: %s", name, token)
				}
				if got := strings.Count(token, "."); got != 2 {
					t.Fatalf("%s: expected 3 segments, got %d", name, got+1)
				}

				tok, err := m.Verify(context.Background(), token)
				if err != nil {
					t.Fatalf("%s: verify: %v", name, err)
				}
				if tok.Header.Algorithm != alg {
					t.Fatalf("%s: expected alg %s, got %s", name, alg, tok.Header.Algorithm)
				}
				if tok.Header.KeyID != key.KeyID() {
					t.Fatalf("%s: expected kid %q, got %q", name, key.KeyID(), tok.Header.KeyID)
				}
				if tok.Header.Type != jws.TypeJWT {
					t.Fatalf("%s: expected typ JWT, got %q", name, tok.Header.Type)
				}
				assertSameClaims(t, claims, tok.Claims)
			}
		})
	}
}

func TestTamperingAnyCharacterInvalidatesToken(t *testing.T) {
	for _, alg := range []string{"HS256", "ES256", "EdDSA"} {
		t.Run(alg, func(t *testing.T) {
			key := signingKey(t, alg)
			m := newTestManager(t, Config[profile]{Resolver: staticResolver(key.Public())})
			token, err := m.Sign(validClaims(), key)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}

			signed := token[:strings.LastIndex(token, ".")]
			for i := 0; i < len(signed); i++ {
				if signed[i] == '.' {
					continue
				}
				replacement := byte('A')
				if signed[i] == 'A' {
					replacement = 'B'
				}
				tampered := token[:i] + string(replacement) + token[i+1:]

				_, err := m.Verify(context.Background(), tampered)
				if err == nil {
					t.Fatalf("tampered token at offset %d verified", i)
				}
				switch KindOf(err) {
				case KindSignatureInvalid, KindParse, KindAlgorithmNotFound, KindAlgorithmKeyMismatch:
				default:
					t.Fatalf("offset %d: unexpected failure kind %s: %v", i, KindOf(err), err)
				}
				if KindOf(err) != KindParse && !errors.Is(err, ErrSignatureInvalid) {
					t.Fatalf("offset %d: expected signature stage failure, got %v", i, err)
				}
			}
		})
	}
}

func TestTamperingSignatureIsRejected(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key)})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	dot := strings.LastIndex(token, ".")
	sig, err := jws.Decode(token[dot+1:])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	sig[0] ^= 0x01
	tampered := token[:dot+1] + jws.Encode(sig)

	if _, err := m.Verify(context.Background(), tampered); KindOf(err) != KindSignatureInvalid {
		t.Fatalf("expected signature_invalid, got %v", err)
	}
}

func TestNonCanonicalSignatureEncodingIsRejected(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key)})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := strings.IndexByte(alphabet, token[len(token)-1])
	// A 32-byte HMAC leaves two unused bits in the final character.
	trailing := token[:len(token)-1] + string(alphabet[last^0x01])

	dot := strings.LastIndex(token, ".")
	newline := token[:dot+3] + "\n" + token[dot+3:]

	for name, variant := range map[string]string{"trailing bits": trailing, "line break": newline} {
		t.Run(name, func(t *testing.T) {
			if variant == token {
				t.Fatal("variant must differ from the issued token")
			}
			if _, err := m.Verify(context.Background(), variant); KindOf(err) != KindParse {
				t.Fatalf("expected parse_error, got %v", err)
			}
		})
	}
}

func TestTimeBounds(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key)})

	cases := []struct {
		name    string
		exp     *gjwt.NumericDate
		nbf     *gjwt.NumericDate
		wantErr error
	}{
		{name: "expired one second ago", exp: gjwt.NewNumericDate(testNow.Add(-time.Second)), wantErr: ErrTokenExpired},
		{name: "expires now", exp: gjwt.NewNumericDate(testNow), wantErr: ErrTokenExpired},
		{name: "expires in ten minutes", exp: gjwt.NewNumericDate(testNow.Add(600 * time.Second))},
		{name: "not before in a minute", exp: gjwt.NewNumericDate(testNow.Add(time.Hour)), nbf: gjwt.NewNumericDate(testNow.Add(60 * time.Second)), wantErr: ErrTokenNotYetValid},
		{name: "not before now", nbf: gjwt.NewNumericDate(testNow)},
		{name: "no time claims"},
		{name: "expiry checked before nbf", exp: gjwt.NewNumericDate(testNow.Add(-time.Second)), nbf: gjwt.NewNumericDate(testNow.Add(time.Minute)), wantErr: ErrTokenExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := Claims[profile]{RegisteredClaims: RegisteredClaims{Subject: "alice", ExpiresAt: tc.exp, NotBefore: tc.nbf}}
			token, err := m.Sign(claims, key)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			_, err = m.Verify(context.Background(), token)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected valid token, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if KindOf(err) != KindClaimInvalid {
				t.Fatalf("expected claim_invalid kind, got %s", KindOf(err))
			}
		})
	}
}

func TestAlgorithmConfusionIsRejected(t *testing.T) {
	rsaPriv := signingKey(t, "RS256")
	rsaPub := rsaPriv.Public()
	pubPEM, err := jwk.MarshalPEM(rsaPub)
	if err != nil {
		t.Fatalf("marshal public pem: %v", err)
	}

	// HS256 keyed with the RSA public key bytes: the classic confusion attack.
	forgedKey, err := jwk.NewHMAC(pubPEM)
	if err != nil {
		t.Fatalf("hmac key: %v", err)
	}
	issuer := newTestManager(t, Config[profile]{})
	forged, err := issuer.Sign(validClaims(), forgedKey)
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	verifier := newTestManager(t, Config[profile]{Resolver: staticResolver(rsaPub)})
	_, err = verifier.Verify(context.Background(), forged)
	if KindOf(err) != KindAlgorithmKeyMismatch {
		t.Fatalf("expected algorithm_key_mismatch, got %v", err)
	}
	if !errors.Is(err, ErrSignatureInvalid) || !errors.Is(err, ErrAlgorithmKeyMismatch) {
		t.Fatalf("expected mismatch to match signature and mismatch sentinels: %v", err)
	}

	pinned := newTestManager(t, Config[profile]{Resolver: staticResolver(rsaPub), Algorithms: []string{"RS256"}})
	_, err = pinned.Verify(context.Background(), forged)
	if KindOf(err) != KindAlgorithmNotFound {
		t.Fatalf("expected algorithm_not_found from pinned registry, got %v", err)
	}

	unsecured := jws.Encode([]byte(`{"alg":"none","typ":"JWT"}`)) + "." + jws.Encode([]byte(`{"sub":"alice"}`)) + "."
	_, err = verifier.Verify(context.Background(), unsecured)
	if KindOf(err) != KindAlgorithmNotFound {
		t.Fatalf("expected alg none to be unknown, got %v", err)
	}
}

func TestDeclaredAlgorithmAndCurveAreEnforced(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	hs512, _ := jwk.NewHMAC(secret, jwk.WithAlgorithm("HS512"))
	hs256, _ := jwk.NewHMAC(secret, jwk.WithAlgorithm("HS256"))

	m := newTestManager(t, Config[profile]{Resolver: staticResolver(hs256)})
	token, err := m.Sign(validClaims(), hs512)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), token); KindOf(err) != KindAlgorithmKeyMismatch {
		t.Fatalf("expected HS256-declared key to refuse HS512 token, got %v", err)
	}

	es384 := signingKey(t, "ES384")
	es256 := signingKey(t, "ES256")
	if es256.Curve() != elliptic.P256() {
		t.Fatalf("expected P-256 key")
	}
	m2 := newTestManager(t, Config[profile]{Resolver: staticResolver(es256.Public())})
	token, err = m2.Sign(validClaims(), es384)
	if err != nil {
		t.Fatalf("sign es384: %v", err)
	}
	if _, err := m2.Verify(context.Background(), token); KindOf(err) != KindAlgorithmKeyMismatch {
		t.Fatalf("expected curve mismatch, got %v", err)
	}
}

func TestSignRejectsIncompatibleKeys(t *testing.T) {
	m := newTestManager(t, Config[profile]{})

	pub := signingKey(t, "ES256").Public()
	if _, err := m.Sign(validClaims(), pub); KindOf(err) != KindAlgorithmKeyMismatch {
		t.Fatalf("expected public key to be unable to sign, got %v", err)
	}

	odd, _ := jwk.NewHMAC([]byte("secret"), jwk.WithAlgorithm("HS1024"))
	if _, err := m.Sign(validClaims(), odd); KindOf(err) != KindAlgorithmNotFound {
		t.Fatalf("expected unknown declared algorithm, got %v", err)
	}

	if _, err := m.Sign(validClaims(), jwk.Key{}); KindOf(err) != KindAlgorithmNotFound {
		t.Fatalf("expected zero key to be rejected, got %v", err)
	}
}

func TestParseFailures(t *testing.T) {
	key := signingKey(t, "HS256")
	var resolved atomic.Int32
	resolver := KeyResolverFunc(func(context.Context, jws.Header, ClaimSet) (jwk.Key, error) {
		resolved.Add(1)
		return key, nil
	})
	m := newTestManager(t, Config[profile]{Resolver: resolver})

	good, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(good, ".")

	cases := map[string]string{
		"empty":            "",
		"two segments":     parts[0] + "." + parts[1],
		"four segments":    good + ".extra",
		"padded header":    parts[0] + "=." + parts[1] + "." + parts[2],
		"bad base64":       parts[0] + ".%%%." + parts[2],
		"header not json":  jws.Encode([]byte("nope")) + "." + parts[1] + "." + parts[2],
		"header no alg":    jws.Encode([]byte(`{"typ":"JWT"}`)) + "." + parts[1] + "." + parts[2],
		"payload not json": parts[0] + "." + jws.Encode([]byte("nope")) + "." + parts[2],
		"payload array":    parts[0] + "." + jws.Encode([]byte(`[1,2]`)) + "." + parts[2],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(context.Background(), token)
			if KindOf(err) != KindParse || !errors.Is(err, ErrParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
		})
	}
	if n := resolved.Load(); n != 0 {
		t.Fatalf("resolver must not run for malformed tokens, ran %d times", n)
	}
}

func TestKeyResolutionFailureShortCircuits(t *testing.T) {
	key := signingKey(t, "HS256")
	var validated atomic.Int32
	m := newTestManager(t, Config[profile]{
		Resolver: KeyResolverFunc(func(context.Context, jws.Header, ClaimSet) (jwk.Key, error) {
			return jwk.Key{}, errors.New("unknown kid")
		}),
		Validator: func(*Token[profile]) error {
			validated.Add(1)
			return nil
		},
	})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = m.Verify(context.Background(), token)
	if KindOf(err) != KindKeyResolution || !errors.Is(err, ErrKeyResolution) {
		t.Fatalf("expected key resolution error, got %v", err)
	}
	var tokErr *Error
	if !errors.As(err, &tokErr) || tokErr.Reason() != "unknown kid" {
		t.Fatalf("expected resolver reason to be preserved, got %v", err)
	}
	if validated.Load() != 0 {
		t.Fatal("validator must not run after key resolution failure")
	}
}

func TestKeyResolutionCancellationDoesNotHang(t *testing.T) {
	key := signingKey(t, "HS256")
	release := make(chan struct{})
	defer close(release)

	m := newTestManager(t, Config[profile]{
		Resolver: KeyResolverFunc(func(context.Context, jws.Header, ClaimSet) (jwk.Key, error) {
			<-release
			return key, nil
		}),
	})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Verify(ctx, token)
	if KindOf(err) != KindKeyResolution || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected key resolution failure on deadline, got %v", err)
	}
}

func TestResolverReceivesHeaderAndClaims(t *testing.T) {
	key := signingKey(t, "ES256")
	var gotKid, gotSub, gotRole string
	m := newTestManager(t, Config[profile]{
		Resolver: KeyResolverFunc(func(_ context.Context, h jws.Header, claims ClaimSet) (jwk.Key, error) {
			gotKid = h.KeyID
			gotSub = claims.Registered().Subject
			if full, ok := claims.(*Claims[profile]); ok {
				gotRole = full.Extra.Role
			}
			return key.Public(), nil
		}),
	})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if gotKid != key.KeyID() || gotSub != "alice" || gotRole != "editor" {
		t.Fatalf("resolver saw kid=%q sub=%q role=%q", gotKid, gotSub, gotRole)
	}
}

func TestSignatureFailureSkipsLaterStages(t *testing.T) {
	signer := signingKey(t, "HS256")
	other := signingKey(t, "HS256")
	var validated atomic.Int32
	m := newTestManager(t, Config[profile]{
		Resolver: staticResolver(other),
		Validator: func(*Token[profile]) error {
			validated.Add(1)
			return nil
		},
	})

	claims := validClaims()
	claims.ExpiresAt = gjwt.NewNumericDate(testNow.Add(-time.Hour))
	token, err := m.Sign(claims, signer)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Verify(context.Background(), token)
	if KindOf(err) != KindSignatureInvalid {
		t.Fatalf("expected signature failure to win over expiry, got %v", err)
	}
	if validated.Load() != 0 {
		t.Fatal("validator must not run after signature failure")
	}
}

func TestCustomValidatorAndClockOverrides(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key)})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	requireAdmin := Check[profile]("admin", func(p profile) bool { return p.Admin })
	_, err = m.Verify(context.Background(), token, WithValidator(requireAdmin))
	if KindOf(err) != KindCustomValidation || !errors.Is(err, ErrCustomValidation) {
		t.Fatalf("expected custom validation failure, got %v", err)
	}
	if !errors.Is(err, ErrClaimMismatch) {
		t.Fatalf("expected validator cause to be preserved, got %v", err)
	}

	later := func() time.Time { return testNow.Add(time.Hour) }
	if _, err := m.Verify(context.Background(), token, WithClock(later)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected clock override to expire token, got %v", err)
	}

	type other struct{}
	_, err = m.Verify(context.Background(), token, WithValidator(AcceptAll[other]()))
	if KindOf(err) != KindCustomValidation {
		t.Fatalf("expected mismatched validator type to fail closed, got %v", err)
	}
}

func TestVerifyIssuerAudienceAndLeeway(t *testing.T) {
	key := signingKey(t, "EdDSA")
	policy := All(HasIssuer[profile]("issuer.example"), HasAudience[profile]("api"))
	m := newTestManager(t, Config[profile]{
		Resolver:  staticResolver(key.Public()),
		Validator: policy,
		Leeway:    30 * time.Second,
	})

	sign := func(mut func(*Claims[profile])) string {
		claims := validClaims()
		mut(&claims)
		token, err := m.Sign(claims, key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	if _, err := m.Verify(context.Background(), sign(func(*Claims[profile]) {})); err != nil {
		t.Fatalf("expected valid token: %v", err)
	}
	if _, err := m.Verify(context.Background(), sign(func(c *Claims[profile]) { c.Issuer = "other" })); !errors.Is(err, ErrClaimMismatch) {
		t.Fatalf("expected wrong issuer to fail, got %v", err)
	}
	if _, err := m.Verify(context.Background(), sign(func(c *Claims[profile]) { c.Audience = gjwt.ClaimStrings{"other-api"} })); !errors.Is(err, ErrClaimMismatch) {
		t.Fatalf("expected wrong audience to fail, got %v", err)
	}
	within := sign(func(c *Claims[profile]) { c.ExpiresAt = gjwt.NewNumericDate(testNow.Add(-15 * time.Second)) })
	if _, err := m.Verify(context.Background(), within); err != nil {
		t.Fatalf("expected token within leeway to pass: %v", err)
	}
	expired := sign(func(c *Claims[profile]) { c.ExpiresAt = gjwt.NewNumericDate(testNow.Add(-2 * time.Minute)) })
	if _, err := m.Verify(context.Background(), expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestMaxFutureIssuedAt(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key), MaxFutureIAT: time.Minute})

	claims := validClaims()
	claims.IssuedAt = gjwt.NewNumericDate(testNow.Add(5 * time.Minute))
	token, err := m.Sign(claims, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), token); !errors.Is(err, ErrTokenIssuedInFuture) {
		t.Fatalf("expected iat in the future to fail, got %v", err)
	}
}

func TestNewManagerRejectsInvalidConfig(t *testing.T) {
	if _, err := NewManager(Config[profile]{Leeway: 3 * time.Minute}); err == nil {
		t.Fatal("expected excessive leeway to be rejected")
	}
	if _, err := NewManager(Config[profile]{MaxFutureIAT: -time.Second}); err == nil {
		t.Fatal("expected negative MaxFutureIAT to be rejected")
	}
	if _, err := NewManager(Config[profile]{Algorithms: []string{"HS256", "XS1"}}); !errors.Is(err, jwa.ErrAlgorithmNotFound) {
		t.Fatalf("expected unknown pinned algorithm to be rejected, got %v", err)
	}
}

func TestVerifyWithoutResolverFails(t *testing.T) {
	key := signingKey(t, "HS256")
	m := newTestManager(t, Config[profile]{})
	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), token); KindOf(err) != KindKeyResolution {
		t.Fatalf("expected key resolution failure, got %v", err)
	}
}

type denylist struct {
	revoked map[string]bool
	err     error
	calls   atomic.Int32
}

func (d *denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.calls.Add(1)
	return d.revoked[jti], d.err
}

func TestRevocationRunsAfterSignatureAndTime(t *testing.T) {
	key := signingKey(t, "HS256")
	deny := &denylist{revoked: map[string]bool{"token-1": true}}
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key), Revocations: deny})

	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Verify(context.Background(), token)
	if KindOf(err) != KindClaimInvalid || !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked token to fail as claim_invalid, got %v", err)
	}
	if deny.calls.Load() != 1 {
		t.Fatalf("expected one denylist lookup, got %d", deny.calls.Load())
	}

	// A forged token carrying a revoked jti fails on its signature first.
	dot := strings.LastIndex(token, ".")
	forged := token[:dot+1] + jws.Encode([]byte("not a signature"))
	if _, err := m.Verify(context.Background(), forged); KindOf(err) != KindSignatureInvalid {
		t.Fatalf("expected signature_invalid, got %v", err)
	}

	expired := validClaims()
	expired.ExpiresAt = gjwt.NewNumericDate(testNow.Add(-time.Second))
	stale, err := m.Sign(expired, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), stale); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expiry to win, got %v", err)
	}

	noID := validClaims()
	noID.ID = ""
	anonymous, err := m.Sign(noID, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(context.Background(), anonymous); err != nil {
		t.Fatalf("expected token without jti to pass: %v", err)
	}

	if deny.calls.Load() != 1 {
		t.Fatalf("denylist consulted for unauthenticated or exempt tokens: %d lookups", deny.calls.Load())
	}
}

func TestRevocationBackendFailureRejects(t *testing.T) {
	key := signingKey(t, "HS256")
	deny := &denylist{err: errors.New("redis down")}
	m := newTestManager(t, Config[profile]{Resolver: staticResolver(key), Revocations: deny})

	token, err := m.Sign(validClaims(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = m.Verify(context.Background(), token)
	if KindOf(err) != KindClaimInvalid || !errors.Is(err, ErrRevocationUnavailable) {
		t.Fatalf("expected revocation_unavailable, got %v", err)
	}
	if errors.Is(err, ErrTokenRevoked) {
		t.Fatal("backend failure must not read as a revoked token")
	}
}
