package prometheus

import (
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"

	goJWS "github.com/MrEthical07/goJWS"
	"github.com/MrEthical07/goJWS/jwk"
)

func mustHMAC(t *testing.T) jwk.Key {
	t.Helper()
	key, err := jwk.Generate("HS256")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return key
}

func gatherByName(t *testing.T, c *Collector) map[string]float64 {
	t.Helper()

	reg := promclient.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	out := make(map[string]float64, len(families))
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			out[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetHistogram() != nil:
			out[mf.GetName()] = float64(m.GetHistogram().GetSampleCount())
		}
	}
	return out
}

func TestCollectorExportsSnapshot(t *testing.T) {
	c := NewCollector(fakeSource{
		snapshot: goJWS.MetricsSnapshot{
			Counters: map[goJWS.MetricID]uint64{
				goJWS.MetricVerifySuccess:     5,
				goJWS.MetricVerifyRateLimited: 1,
			},
			Histograms: map[goJWS.MetricID][]uint64{
				goJWS.MetricSignLatency: {3, 1, 0, 0, 0, 0, 0, 1},
			},
		},
		dropped: 4,
	})

	got := gatherByName(t, c)
	if got["gojws_verify_success_total"] != 5 {
		t.Fatalf("verify success = %v", got["gojws_verify_success_total"])
	}
	if got["gojws_verify_rate_limited_total"] != 1 {
		t.Fatalf("rate limited = %v", got["gojws_verify_rate_limited_total"])
	}
	if got["gojws_sign_latency_seconds"] != 5 {
		t.Fatalf("sign histogram count = %v", got["gojws_sign_latency_seconds"])
	}
	if _, ok := got["gojws_verify_latency_seconds"]; ok {
		t.Fatal("verify histogram absent from snapshot must not be collected")
	}
	if got["gojws_audit_dropped_total"] != 4 {
		t.Fatalf("audit dropped = %v", got["gojws_audit_dropped_total"])
	}
}

func TestCollectorDisabledMetricsOnlyReportsDrops(t *testing.T) {
	c := NewCollector(fakeSource{
		snapshot: goJWS.MetricsSnapshot{
			Counters:   map[goJWS.MetricID]uint64{},
			Histograms: map[goJWS.MetricID][]uint64{},
		},
	})

	got := gatherByName(t, c)
	if len(got) != 1 {
		t.Fatalf("expected only the audit drop counter, got %v", got)
	}
}

func TestCollectorReadsLiveEngine(t *testing.T) {
	engine, err := goJWS.New[struct{}]().
		WithConfig(goJWS.DefaultConfig()).
		WithSigningKey(mustHMAC(t)).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Issue(t.Context(), goJWS.Claims[struct{}]{}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	got := gatherByName(t, NewCollector(engine))
	if got["gojws_issue_success_total"] != 1 {
		t.Fatalf("issue success = %v", got["gojws_issue_success_total"])
	}
}
