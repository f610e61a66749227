package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	goJWS "github.com/MrEthical07/goJWS"
	"github.com/MrEthical07/goJWS/codec"
	"github.com/MrEthical07/goJWS/jwk"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
	"github.com/MrEthical07/goJWS/resolve"
)

type claimsMap = map[string]any

type cli struct {
	settings settings
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

/* ==== KEYGEN ==== */

func (c *cli) keygen(args []string) error {
	fs := newFlagSet("keygen")
	alg := fs.String("alg", "ES256", "algorithm the key is declared for")
	kid := fs.String("kid", "", "key id; random when empty")
	asPEM := fs.Bool("pem", false, "write PKCS#8 PEM instead of a JWK")
	out := fs.String("out", "", "output file; stdout when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var opts []jwk.Option
	if *kid != "" {
		opts = append(opts, jwk.WithKeyID(*kid))
	}
	key, err := jwk.Generate(*alg, opts...)
	if err != nil {
		return err
	}

	var data []byte
	if *asPEM {
		data, err = jwk.MarshalPEM(key)
	} else {
		data, err = jwk.MarshalJWK(key)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}

	c.logger.Info("key generated", slog.String("alg", key.Algorithm()), slog.String("kid", key.KeyID()))
	if *out == "" {
		_, err = c.stdout.Write(data)
		return err
	}
	return os.WriteFile(*out, data, 0o600)
}

/* ==== SIGN ==== */

func (c *cli) sign(args []string) error {
	fs := newFlagSet("sign")
	keyPath := fs.String("key", c.settings.KeyFile, "signing key file (JWK or PEM)")
	kid := fs.String("kid", "", "override the key id")
	alg := fs.String("alg", "", "override the key algorithm")
	claimsPath := fs.String("claims", "", `claims JSON file, "-" for stdin`)
	raw := fs.Bool("raw", false, "sign claims as given without stamping iss, aud, iat, exp, jti")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	key, err := loadKey(*keyPath, *kid, *alg)
	if err != nil {
		return err
	}
	claims, err := c.readClaims(*claimsPath)
	if err != nil {
		return err
	}

	engine, cleanup, err := c.build(func(b *goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap] {
		return b.WithSigningKey(key)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	var token string
	if *raw {
		token, err = engine.Sign(ctx, claims)
	} else {
		token, err = engine.Issue(ctx, claims)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, token)
	return err
}

func (c *cli) readClaims(path string) (goJWS.Claims[claimsMap], error) {
	var claims goJWS.Claims[claimsMap]

	var data []byte
	var err error
	switch path {
	case "":
		return claims, nil
	case "-":
		data, err = io.ReadAll(c.stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return claims, fmt.Errorf("read claims: %w", err)
	}
	if err := json.Unmarshal(data, &claims); err != nil {
		return claims, fmt.Errorf("decode claims: %w", err)
	}
	return claims, nil
}

/* ==== VERIFY ==== */

type verifiedOutput struct {
	Header jws.Header              `json:"header"`
	Claims goJWS.Claims[claimsMap] `json:"claims"`
}

func (c *cli) verify(args []string) error {
	fs := newFlagSet("verify")
	keyPath := fs.String("key", c.settings.KeyFile, "verification key file (JWK or PEM)")
	jwksPath := fs.String("jwks", c.settings.JWKSFile, "JWKS file; takes precedence over -key")
	kid := fs.String("kid", "", "override the key id")
	alg := fs.String("alg", "", "override the key algorithm")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	token, err := c.tokenArg(fs)
	if err != nil {
		return err
	}

	var configure func(*goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap]
	if *jwksPath != "" {
		file, err := resolve.NewJWKSFile(*jwksPath, c.logger)
		if err != nil {
			return err
		}
		defer file.Close()
		configure = func(b *goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap] {
			return b.WithResolver(file)
		}
	} else {
		key, err := loadKey(*keyPath, *kid, *alg)
		if err != nil {
			return err
		}
		configure = func(b *goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap] {
			return b.WithVerificationKeys(key)
		}
	}

	engine, cleanup, err := c.build(configure)
	if err != nil {
		return err
	}
	defer cleanup()

	tok, err := engine.Verify(context.Background(), token)
	if err != nil {
		return fmt.Errorf("token rejected (%s): %w", jwt.KindOf(err), err)
	}
	return writeJSON(c.stdout, verifiedOutput{Header: tok.Header, Claims: tok.Claims})
}

/* ==== INSPECT ==== */

func (c *cli) inspect(args []string) error {
	fs := newFlagSet("inspect")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	token, err := c.tokenArg(fs)
	if err != nil {
		return err
	}

	parsed, err := jws.Parse(token, codec.Standard)
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	if err := json.Indent(&payload, parsed.Payload, "", "  "); err != nil {
		payload.Reset()
		payload.Write(parsed.Payload)
	}

	if err := writeJSON(c.stdout, parsed.Header); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.stdout, "%s\nsignature: %d bytes (NOT verified)\n", payload.String(), len(parsed.Signature))
	return err
}

/* ==== REPORT ==== */

func (c *cli) report(args []string) error {
	fs := newFlagSet("report")
	keyPath := fs.String("key", c.settings.KeyFile, "signing or verification key file")
	strict := fs.Bool("strict", false, "fail when a HIGH lint finding is present")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	key, err := loadKey(*keyPath, "", "")
	if err != nil {
		return err
	}

	engine, cleanup, err := c.build(func(b *goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap] {
		if key.CanSign() {
			return b.WithSigningKey(key)
		}
		return b.WithVerificationKeys(key)
	})
	if err != nil {
		return err
	}
	defer cleanup()

	r := engine.SecurityReport()
	posture := table.NewWriter()
	posture.SetOutputMirror(c.stdout)
	posture.SetTitle("security posture")
	posture.SetStyle(table.StyleLight)
	posture.AppendHeader(table.Row{"setting", "value"})
	posture.AppendRows([]table.Row{
		{"signing algorithm", orDash(r.SigningAlgorithm)},
		{"signing key id", orDash(r.SigningKeyID)},
		{"accepted algorithms", strings.Join(r.AcceptedAlgorithms, ",")},
		{"token ttl", r.TokenTTL},
		{"leeway", r.Leeway},
		{"issuer pinned", r.IssuerPinned},
		{"audience pinned", r.AudiencePinned},
		{"future iat checked", r.FutureIATChecked},
		{"revocation", r.RevocationActive},
		{"throttle", r.ThrottleActive},
		{"published keys", r.PublishedKeys},
	})
	posture.Render()

	cfg := c.settings.config()
	findings := cfg.Lint()
	if len(findings) > 0 {
		lint := table.NewWriter()
		lint.SetOutputMirror(c.stdout)
		lint.SetTitle("config lint")
		lint.SetStyle(table.StyleLight)
		lint.AppendHeader(table.Row{"severity", "code", "message"})
		for _, w := range findings {
			lint.AppendRow(table.Row{w.Severity, w.Code, w.Message})
		}
		lint.Render()
	}
	if *strict {
		return findings.AsError(goJWS.LintHigh)
	}
	return nil
}

/* ==== HELPERS ==== */

func (c *cli) build(configure func(*goJWS.Builder[claimsMap]) *goJWS.Builder[claimsMap]) (*goJWS.Engine[claimsMap], func(), error) {
	b := goJWS.New[claimsMap]().
		WithConfig(c.settings.config()).
		WithLogger(c.logger)
	b = configure(b)

	rdb := c.settings.redisClient()
	if rdb != nil {
		b = b.WithRedis(rdb)
	}

	engine, err := b.Build()
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, nil, err
	}
	return engine, func() {
		engine.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}, nil
}

func (c *cli) tokenArg(fs *flag.FlagSet) (string, error) {
	arg := fs.Arg(0)
	if arg == "" {
		return "", fmt.Errorf("%w: %s needs a token argument", errUsage, fs.Name())
	}
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func loadKey(path, kid, alg string) (jwk.Key, error) {
	if path == "" {
		return jwk.Key{}, fmt.Errorf("%w: a key file is required (-key or JWS_KEY_FILE)", errUsage)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return jwk.Key{}, fmt.Errorf("read key: %w", err)
	}

	var opts []jwk.Option
	if kid != "" {
		opts = append(opts, jwk.WithKeyID(kid))
	}
	if alg != "" {
		opts = append(opts, jwk.WithAlgorithm(alg))
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return jwk.FromJWK(data, opts...)
	}
	key, err := jwk.FromPEM(data, opts...)
	if errors.Is(err, jwk.ErrInvalidPEM) {
		return jwk.Key{}, fmt.Errorf("%s: %w", path, err)
	}
	return key, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
