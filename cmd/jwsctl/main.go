// Command jwsctl generates keys and signs, verifies and inspects compact
// tokens from the shell.
//
// Usage:
//
//	jwsctl keygen  -alg ES256 [-kid k1] [-pem] [-out key.json]
//	jwsctl sign    -key key.json [-claims claims.json] [-raw]
//	jwsctl verify  [-key key.json] [-jwks keys.json] TOKEN
//	jwsctl inspect TOKEN
//	jwsctl report  -key key.json
//
// Engine settings come from JWS_* environment variables, optionally loaded
// from a .env file in the working directory. TOKEN may be "-" to read stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

var errUsage = errors.New("usage: jwsctl keygen|sign|verify|inspect|report [flags]")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	s, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      s.logLevel(),
		TimeFormat: time.Kitchen,
	}))

	if err := run(os.Args[1:], s, logger, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, s settings, logger *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	c := &cli{settings: s, logger: logger, stdin: stdin, stdout: stdout}
	switch args[0] {
	case "keygen":
		return c.keygen(args[1:])
	case "sign":
		return c.sign(args[1:])
	case "verify":
		return c.verify(args[1:])
	case "inspect":
		return c.inspect(args[1:])
	case "report":
		return c.report(args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
