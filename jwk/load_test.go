package jwk

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestJWKRoundTrip(t *testing.T) {
	for _, alg := range []string{"HS384", "ES256", "EdDSA"} {
		k, err := Generate(alg, WithKeyID("kid-"+alg))
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		data, err := MarshalJWK(k.Public())
		if err != nil {
			t.Fatalf("marshal %s: %v", alg, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("decode jwk: %v", err)
		}
		if fields["use"] != "sig" || fields["alg"] != alg || fields["kid"] != "kid-"+alg {
			t.Fatalf("unexpected jwk members %v", fields)
		}
		if alg != "HS384" {
			if _, ok := fields["d"]; ok {
				t.Fatalf("public jwk leaks private material: %v", fields)
			}
		}

		back, err := FromJWK(data)
		if err != nil {
			t.Fatalf("parse %s: %v", alg, err)
		}
		if back.Algorithm() != alg || back.KeyID() != "kid-"+alg || back.Family() != k.Family() {
			t.Fatalf("unexpected key after round trip: %s %s %s", back.Algorithm(), back.KeyID(), back.Family())
		}
	}
}

func TestParseSet(t *testing.T) {
	a, _ := Generate("ES256", WithKeyID("a"))
	b, _ := Generate("EdDSA", WithKeyID("b"))
	data, err := MarshalSet(a.Public(), b.Public())
	if err != nil {
		t.Fatalf("marshal set: %v", err)
	}
	keys, err := ParseSet(data)
	if err != nil {
		t.Fatalf("parse set: %v", err)
	}
	if len(keys) != 2 || keys[0].KeyID() != "a" || keys[1].KeyID() != "b" {
		t.Fatalf("unexpected keys %+v", keys)
	}
	for _, k := range keys {
		if k.CanSign() {
			t.Fatal("published keys must not sign")
		}
	}

	dup, err := MarshalSet(a.Public(), a.Public())
	if err != nil {
		t.Fatalf("marshal dup: %v", err)
	}
	if _, err := ParseSet(dup); !errors.Is(err, ErrDuplicateKeyID) {
		t.Fatalf("expected duplicate kid error, got %v", err)
	}

	if _, err := ParseSet([]byte(`{"keys":[{"kty":"bogus"}]}`)); !errors.Is(err, ErrInvalidJWK) {
		t.Fatalf("expected invalid jwk, got %v", err)
	}
}

func TestParseSetSkipsEncryptionKeys(t *testing.T) {
	sig, _ := Generate("ES256", WithKeyID("sig"))
	sigJWK, err := MarshalJWK(sig.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var enc map[string]any
	if err := json.Unmarshal(sigJWK, &enc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	enc["use"] = "enc"
	enc["kid"] = "enc"
	delete(enc, "alg")
	encJWK, _ := json.Marshal(enc)

	doc := []byte(`{"keys":[` + string(sigJWK) + `,` + string(encJWK) + `]}`)
	keys, err := ParseSet(doc)
	if err != nil {
		t.Fatalf("parse set: %v", err)
	}
	if len(keys) != 1 || keys[0].KeyID() != "sig" {
		t.Fatalf("expected only the signing key, got %d keys", len(keys))
	}
}
