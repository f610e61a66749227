package main

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"

	goJWS "github.com/MrEthical07/goJWS"
)

type settings struct {
	Issuer       string        `env:"JWS_ISSUER"`
	Audience     string        `env:"JWS_AUDIENCE"`
	TTL          time.Duration `env:"JWS_TTL" envDefault:"15m"`
	Leeway       time.Duration `env:"JWS_LEEWAY" envDefault:"0s"`
	MaxFutureIAT time.Duration `env:"JWS_MAX_FUTURE_IAT" envDefault:"0s"`
	Algorithms   []string      `env:"JWS_ALGORITHMS" envSeparator:","`
	Codec        string        `env:"JWS_CODEC" envDefault:"standard"`

	KeyFile  string `env:"JWS_KEY_FILE"`
	JWKSFile string `env:"JWS_JWKS_FILE"`

	RedisAddr  string `env:"REDIS_ADDR"`
	Revocation bool   `env:"JWS_REVOCATION"`
	Throttle   bool   `env:"JWS_THROTTLE"`

	LogLevel string `env:"JWS_LOG_LEVEL" envDefault:"info"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := env.Parse(&s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s settings) config() goJWS.Config {
	cfg := goJWS.DefaultConfig()
	cfg.Token.Issuer = s.Issuer
	cfg.Token.Audience = s.Audience
	cfg.Token.TTL = s.TTL
	cfg.Token.Leeway = s.Leeway
	cfg.Token.MaxFutureIAT = s.MaxFutureIAT
	cfg.Token.Algorithms = s.Algorithms
	cfg.Codec = s.Codec
	cfg.Revocation.Enabled = s.Revocation
	cfg.Throttle.Enabled = s.Throttle
	return cfg
}

// redisClient returns nil when no address is set; Build then reports
// ErrRedisRequired if revocation or throttling asked for one.
func (s settings) redisClient() redis.UniversalClient {
	if s.RedisAddr == "" {
		return nil
	}
	return redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{s.RedisAddr}})
}

func (s settings) logLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
