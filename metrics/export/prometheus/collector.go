package prometheus

import (
	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/MrEthical07/goJWS/metrics/export/internaldefs"
)

// Collector adapts a [MetricsSource] to client_golang so engine metrics can
// be registered next to an application's own.
type Collector struct {
	source     MetricsSource
	counters   []*promclient.Desc
	histograms []*promclient.Desc
	dropped    *promclient.Desc
}

var _ promclient.Collector = (*Collector)(nil)

// NewCollector returns a Collector reading from source on every scrape.
func NewCollector(source MetricsSource) *Collector {
	c := &Collector{
		source:     source,
		counters:   make([]*promclient.Desc, len(internaldefs.CounterDefs)),
		histograms: make([]*promclient.Desc, len(internaldefs.HistogramDefs)),
		dropped:    promclient.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for i, def := range internaldefs.CounterDefs {
		c.counters[i] = promclient.NewDesc(def.Name, def.Help, nil, nil)
	}
	for i, def := range internaldefs.HistogramDefs {
		c.histograms[i] = promclient.NewDesc(def.Name, def.Help, nil, nil)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *promclient.Desc) {
	for _, d := range c.counters {
		ch <- d
	}
	for _, d := range c.histograms {
		ch <- d
	}
	ch <- c.dropped
}

// Collect implements prometheus.Collector. Counters are only emitted while
// the engine records metrics; histograms only while latency is enabled.
func (c *Collector) Collect(ch chan<- promclient.Metric) {
	if c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()

	for i, def := range internaldefs.CounterDefs {
		v, ok := snapshot.Counters[def.ID]
		if !ok {
			continue
		}
		ch <- promclient.MustNewConstMetric(c.counters[i], promclient.CounterValue, float64(v))
	}

	for i, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for j, ub := range internaldefs.HistogramUpperBounds {
			buckets[ub] = cumulative[j]
		}
		ch <- promclient.MustNewConstHistogram(c.histograms[i], cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- promclient.MustNewConstMetric(c.dropped, promclient.CounterValue, float64(c.source.AuditDropped()))
}
