// Command jws-loadtest measures Issue and Verify throughput of one engine
// under concurrent load.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	goJWS "github.com/MrEthical07/goJWS"
	"github.com/MrEthical07/goJWS/jwk"
)

type claims struct {
	Role   string `json:"role"`
	Tenant string `json:"tenant"`
}

func main() {
	var (
		alg         = flag.String("alg", "ES256", "signing algorithm")
		tokens      = flag.Int("tokens", 10000, "number of tokens to pre-issue for the verify phase")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (issue + verify)")
		codecName   = flag.String("codec", "standard", "token codec: standard or fast")
		revocation  = flag.Bool("revocation", false, "check a Redis revocation list on every verify")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo, TimeFormat: time.Kitchen}))

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		logger.Error("tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := goJWS.DefaultConfig()
	cfg.Token.Issuer = "https://loadtest.local"
	cfg.Token.Audience = "loadtest"
	cfg.Token.Algorithms = []string{*alg}
	cfg.Codec = *codecName
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Revocation.Enabled = *revocation

	key, err := jwk.Generate(*alg, jwk.WithKeyID("loadtest"))
	if err != nil {
		logger.Error("generate key", "error", err)
		os.Exit(1)
	}
	builder := goJWS.New[claims]().WithConfig(cfg).WithSigningKey(key)

	if *revocation {
		client, cleanup, err := connectRedis(*redisAddr, logger)
		if err != nil {
			logger.Error("redis", "error", err)
			os.Exit(1)
		}
		defer cleanup()
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		logger.Error("build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	logger.Info("issuing tokens", "count", *tokens, "alg", *alg)
	startSeed := time.Now()
	issued := make([]string, *tokens)
	for i := range issued {
		issued[i], err = engine.Issue(ctx, goJWS.Claims[claims]{Extra: claims{Role: "member", Tenant: fmt.Sprintf("t%d", i%16)}})
		if err != nil {
			logger.Error("issue failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("issued", "elapsed", time.Since(startSeed).Round(time.Millisecond))

	issueStats, err := runPhase(ctx, *ops, *concurrency, func(ctx context.Context, _ *rand.Rand) error {
		_, err := engine.Issue(ctx, goJWS.Claims[claims]{Extra: claims{Role: "member"}})
		return err
	})
	if err != nil {
		logger.Error("issue phase", "error", err)
		os.Exit(1)
	}
	verifyStats, err := runPhase(ctx, *ops, *concurrency, func(ctx context.Context, r *rand.Rand) error {
		_, err := engine.Verify(ctx, issued[r.Intn(len(issued))])
		return err
	})
	if err != nil {
		logger.Error("verify phase", "error", err)
		os.Exit(1)
	}

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("verify", verifyStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine counters: verify_success=%d signature_invalid=%d sign_failure=%d\n",
		snap.Counters[goJWS.MetricVerifySuccess],
		snap.Counters[goJWS.MetricVerifySignatureInvalid],
		snap.Counters[goJWS.MetricSignFailure],
	)
}

func connectRedis(addr string, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		logger.Info("using redis", "addr", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	logger.Info("using miniredis", "addr", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// runPhase spreads ops calls of op across concurrency workers. Operation
// errors are counted, not fatal; only a cancelled context stops the phase.
func runPhase(ctx context.Context, ops, concurrency int, op func(context.Context, *rand.Rand) error) (phaseStats, error) {
	var (
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		worker := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			local := make([]time.Duration, 0, ops/concurrency+1)
			defer func() {
				mu.Lock()
				latencies = append(latencies, local...)
				mu.Unlock()
			}()
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return nil
				}
				t0 := time.Now()
				err := op(gctx, r)
				local = append(local, time.Since(t0))
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return phaseStats{}, err
	}
	return computeStats(time.Since(start), latencies, failures), nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
