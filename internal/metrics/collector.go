package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"animewatch/internal/recognition"
)

const scrapeTimeout = 2 * time.Second

// StatsSource returns the current engine counters.
type StatsSource interface {
	Stats(ctx context.Context) (recognition.Stats, error)
}

// RecognitionCollector implements prometheus.Collector for engine stats.
// It polls the source on each scrape rather than maintaining duplicate state.
type RecognitionCollector struct {
	source StatsSource

	entriesIndexed *prometheus.Desc
	queryCacheSize *prometheus.Desc
	hits           *prometheus.Desc
	misses         *prometheus.Desc
	up             *prometheus.Desc
}

// NewRecognitionCollector creates a collector that scrapes engine stats on demand.
func NewRecognitionCollector(source StatsSource) *RecognitionCollector {
	return &RecognitionCollector{
		source: source,
		entriesIndexed: prometheus.NewDesc(
			"animewatch_recognition_entries_indexed",
			"Catalog entries held by the recognition engine.",
			nil, nil,
		),
		queryCacheSize: prometheus.NewDesc(
			"animewatch_recognition_query_cache_entries",
			"Raw queries currently held in the recent-query cache.",
			nil, nil,
		),
		hits: prometheus.NewDesc(
			"animewatch_recognition_hits_total",
			"Recognitions answered by each lookup tier since the last invalidation.",
			[]string{"tier"}, nil,
		),
		misses: prometheus.NewDesc(
			"animewatch_recognition_misses_total",
			"Recognitions that produced no match since the last invalidation.",
			nil, nil,
		),
		up: prometheus.NewDesc(
			"animewatch_recognition_up",
			"Whether the last stats read from the tracker succeeded.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *RecognitionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entriesIndexed
	ch <- c.queryCacheSize
	ch <- c.hits
	ch <- c.misses
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *RecognitionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	stats, err := c.source.Stats(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.entriesIndexed, prometheus.GaugeValue, float64(stats.EntriesIndexed))
	ch <- prometheus.MustNewConstMetric(c.queryCacheSize, prometheus.GaugeValue, float64(stats.QueryCacheSize))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.HitsQueryCache), recognition.TierQueryCache.String())
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.HitsExact), recognition.TierExact.String())
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.HitsNormalized), recognition.TierNormalized.String())
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.HitsFuzzy), recognition.TierFuzzy.String())
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
}
