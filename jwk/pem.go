package jwk

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// MarshalPEM encodes the private key as PKCS#8 when present, otherwise the
// public key as PKIX. Symmetric keys have no PEM form.
func MarshalPEM(k Key) ([]byte, error) {
	switch {
	case k.family == FamilyOct:
		return nil, fmt.Errorf("%w: oct keys have no pem encoding", ErrUnsupportedKey)
	case k.private != nil:
		der, err := x509.MarshalPKCS8PrivateKey(k.private)
		if err != nil {
			return nil, fmt.Errorf("marshal private key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
	case k.public != nil:
		der, err := x509.MarshalPKIXPublicKey(k.public)
		if err != nil {
			return nil, fmt.Errorf("marshal public key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
	default:
		return nil, ErrNilKey
	}
}
