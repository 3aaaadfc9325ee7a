// Package metrics exposes recognition statistics to Prometheus.
//
// RecognitionCollector reads engine counters lazily on each scrape, while
// Metrics records per-call latency and outcome through the tracker observer
// hook. Server serves the registry on a dedicated bind address.
package metrics
