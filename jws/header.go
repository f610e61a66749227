package jws

// Header is the protected JOSE header of a compact token.
type Header struct {
	Algorithm   string `json:"alg"`
	KeyID       string `json:"kid,omitempty"`
	Type        string `json:"typ,omitempty"`
	ContentType string `json:"cty,omitempty"`
}

// TypeJWT is the conventional "typ" value for JSON Web Tokens.
const TypeJWT = "JWT"

// NewHeader returns a header for alg and kid, typed as a JWT.
func NewHeader(alg, kid string) Header {
	return Header{Algorithm: alg, KeyID: kid, Type: TypeJWT}
}
