package jwa

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
)

var (
	rsaOnce sync.Once
	rsaPriv *rsa.PrivateKey
)

func testKey(t *testing.T, alg string) jwk.Key {
	t.Helper()
	switch alg[:2] {
	case "RS", "PS":
		rsaOnce.Do(func() {
			var err error
			rsaPriv, err = rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				panic(err)
			}
		})
		k, err := jwk.NewPrivate(rsaPriv)
		if err != nil {
			t.Fatalf("wrap rsa: %v", err)
		}
		return k
	}
	k, err := jwk.Generate(alg)
	if err != nil {
		t.Fatalf("generate %s: %v", alg, err)
	}
	return k
}

func TestDefaultRegistryContents(t *testing.T) {
	want := []string{
		"ES256", "ES384", "ES512", "EdDSA",
		"HS256", "HS384", "HS512",
		"PS256", "PS384", "PS512",
		"RS256", "RS384", "RS512",
	}
	got := Default().IDs()
	if len(got) != len(want) {
		t.Fatalf("expected %d algorithms, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if _, err := Default().Lookup("none"); !errors.Is(err, ErrAlgorithmNotFound) {
		t.Fatalf("expected none to be absent, got %v", err)
	}
}

func TestEveryAlgorithmSignsAndVerifies(t *testing.T) {
	input := []byte("eyJhbGciOiJ4In0.eyJzdWIiOiJhIn0")
	for _, id := range Default().IDs() {
		t.Run(id, func(t *testing.T) {
			alg, err := Default().Lookup(id)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			key := testKey(t, id)
			header := jws.NewHeader(id, key.KeyID())

			sig, err := alg.Sign(key, header, input)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if err := alg.Verify(key.Public(), header, input, sig); err != nil {
				t.Fatalf("verify: %v", err)
			}

			tampered := append([]byte(nil), input...)
			tampered[len(tampered)-1] ^= 0x01
			if err := alg.Verify(key.Public(), header, tampered, sig); !errors.Is(err, ErrSignatureInvalid) {
				t.Fatalf("expected tampered input to fail, got %v", err)
			}
			if err := alg.Verify(key.Public(), header, input, sig[:len(sig)-1]); !errors.Is(err, ErrSignatureInvalid) {
				t.Fatalf("expected truncated signature to fail, got %v", err)
			}
		})
	}
}

func TestAlgorithmRefusesInapplicableKeys(t *testing.T) {
	hs256, _ := HMAC(256)
	es256, _ := ECDSA(256)
	rs256, _ := RSA(256)
	eddsa := EdDSA()

	hmacKey := testKey(t, "HS256")
	ecKey := testKey(t, "ES256")
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("generate p384: %v", err)
	}
	undeclaredP384, _ := jwk.NewPrivate(p384)

	cases := []struct {
		name   string
		alg    Algorithm
		key    jwk.Key
		header jws.Header
	}{
		{"header names another algorithm", hs256, hmacKey, jws.NewHeader("HS512", "")},
		{"rsa algorithm with hmac key", rs256, hmacKey, jws.NewHeader("RS256", "")},
		{"hmac algorithm with rsa key", hs256, testKey(t, "RS256").Public(), jws.NewHeader("HS256", "")},
		{"ecdsa with wrong curve", es256, undeclaredP384, jws.NewHeader("ES256", "")},
		{"eddsa with ec key", eddsa, ecKey, jws.NewHeader("EdDSA", "")},
		{"zero key", hs256, jwk.Key{}, jws.NewHeader("HS256", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.alg.Sign(tc.key, tc.header, []byte("a.b")); !errors.Is(err, ErrAlgorithmKeyMismatch) {
				t.Fatalf("sign: expected key mismatch, got %v", err)
			}
			if err := tc.alg.Verify(tc.key, tc.header, []byte("a.b"), []byte("sig")); !errors.Is(err, ErrAlgorithmKeyMismatch) {
				t.Fatalf("verify: expected key mismatch, got %v", err)
			}
		})
	}

	var inapplicable *InapplicableError
	_, err = es256.Sign(ecKey.Public(), jws.NewHeader("ES256", ""), []byte("a.b"))
	if !errors.As(err, &inapplicable) || inapplicable.Algorithm != "ES256" {
		t.Fatalf("expected public key to be unable to sign, got %v", err)
	}
}

func TestDeclaredAlgorithmIsBinding(t *testing.T) {
	hs256, _ := HMAC(256)
	hs512, _ := HMAC(512)
	secret := make([]byte, 64)
	key, err := jwk.NewHMAC(secret, jwk.WithAlgorithm("HS512"))
	if err != nil {
		t.Fatalf("hmac key: %v", err)
	}

	if _, err := hs256.Sign(key, jws.NewHeader("HS256", ""), []byte("a.b")); !errors.Is(err, ErrAlgorithmKeyMismatch) {
		t.Fatalf("expected HS512 key to refuse HS256, got %v", err)
	}
	if _, err := hs512.Sign(key, jws.NewHeader("HS512", ""), []byte("a.b")); err != nil {
		t.Fatalf("expected HS512 key to sign HS512: %v", err)
	}
}

func TestConstructorsRejectUnknownWidths(t *testing.T) {
	for _, build := range []func(int) (Algorithm, error){HMAC, RSA, RSAPSS, ECDSA} {
		if _, err := build(128); !errors.Is(err, ErrUnsupportedWidth) {
			t.Fatalf("expected unsupported width, got %v", err)
		}
	}
}

func TestRegistryConstruction(t *testing.T) {
	hs256, _ := HMAC(256)
	rs256, _ := RSA(256)

	if _, err := NewRegistry(hs256, hs256); !errors.Is(err, ErrDuplicateAlgorithm) {
		t.Fatalf("expected duplicate to be rejected, got %v", err)
	}
	if _, err := NewRegistry(nil); !errors.Is(err, ErrDuplicateAlgorithm) {
		t.Fatalf("expected nil to be rejected, got %v", err)
	}
	if _, err := NewRegistry(noneAlgorithm{}); !errors.Is(err, ErrDuplicateAlgorithm) {
		t.Fatalf("expected none to be rejected, got %v", err)
	}

	r := MustRegistry(hs256, rs256)
	restricted, err := r.Restrict("RS256")
	if err != nil {
		t.Fatalf("restrict: %v", err)
	}
	if ids := restricted.IDs(); len(ids) != 1 || ids[0] != "RS256" {
		t.Fatalf("unexpected restricted ids %v", ids)
	}
	if _, err := restricted.Lookup("HS256"); !errors.Is(err, ErrAlgorithmNotFound) {
		t.Fatalf("expected HS256 to be absent, got %v", err)
	}
	if _, err := r.Restrict("ES256"); !errors.Is(err, ErrAlgorithmNotFound) {
		t.Fatalf("expected restrict to unknown id to fail, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustRegistry to panic on duplicates")
		}
	}()
	MustRegistry(rs256, rs256)
}

type noneAlgorithm struct{}

func (noneAlgorithm) ID() string         { return "none" }
func (noneAlgorithm) Family() jwk.Family { return jwk.FamilyOct }
func (noneAlgorithm) Sign(jwk.Key, jws.Header, []byte) ([]byte, error) {
	return nil, nil
}
func (noneAlgorithm) Verify(jwk.Key, jws.Header, []byte, []byte) error { return nil }
