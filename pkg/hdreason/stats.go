package hdreason

import "github.com/prometheus/client_golang/prometheus"

// StatsCollector exposes a Session's Statistics block (spec.md §4.5) as a
// prometheus.Collector, the one seam into the out-of-scope HTTP inspector
// server (spec.md §1) without this package building that server itself. A
// host process registers it with its own prometheus.Registry.
type StatsCollector struct {
	sess *Session

	queries          *prometheus.Desc
	proofs           *prometheus.Desc
	maxProofDepth    *prometheus.Desc
	minProofDepth    *prometheus.Desc
	totalProofSteps  *prometheus.Desc
	methodCounts     *prometheus.Desc
	hdcQueries       *prometheus.Desc
	hdcSuccesses     *prometheus.Desc
	hdcBindings      *prometheus.Desc
	holoSkipSymbolic *prometheus.Desc
}

// NewStatsCollector wraps sess's live Statistics. Collect reads sess.Stats()
// fresh on every scrape; it never caches.
func NewStatsCollector(sess *Session) *StatsCollector {
	ns := "hdreason"
	return &StatsCollector{
		sess:             sess,
		queries:          prometheus.NewDesc(ns+"_queries_total", "Total query() calls.", nil, nil),
		proofs:           prometheus.NewDesc(ns+"_proofs_total", "Total prove() calls.", nil, nil),
		maxProofDepth:    prometheus.NewDesc(ns+"_max_proof_depth", "Deepest proof search reached so far.", nil, nil),
		minProofDepth:    prometheus.NewDesc(ns+"_min_proof_depth", "Shallowest successful proof depth so far.", nil, nil),
		totalProofSteps:  prometheus.NewDesc(ns+"_proof_steps_total", "Sum of proof step counts across all proofs.", nil, nil),
		methodCounts:     prometheus.NewDesc(ns+"_proof_method_total", "Proofs found per strategy method.", []string{"method"}, nil),
		hdcQueries:       prometheus.NewDesc(ns+"_hdc_queries_total", "Query candidate decodes attempted via the holographic path.", nil, nil),
		hdcSuccesses:     prometheus.NewDesc(ns+"_hdc_successes_total", "Holographic decodes that verified successfully.", nil, nil),
		hdcBindings:      prometheus.NewDesc(ns+"_hdc_bindings_total", "bind() calls performed.", nil, nil),
		holoSkipSymbolic: prometheus.NewDesc(ns+"_holo_skip_symbolic_supplement_total", "Queries the holographic path answered without falling back to a symbolic KB scan.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.queries
	ch <- c.proofs
	ch <- c.maxProofDepth
	ch <- c.minProofDepth
	ch <- c.totalProofSteps
	ch <- c.methodCounts
	ch <- c.hdcQueries
	ch <- c.hdcSuccesses
	ch <- c.hdcBindings
	ch <- c.holoSkipSymbolic
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.sess.Stats()
	ch <- prometheus.MustNewConstMetric(c.queries, prometheus.CounterValue, float64(st.Queries))
	ch <- prometheus.MustNewConstMetric(c.proofs, prometheus.CounterValue, float64(st.Proofs))
	ch <- prometheus.MustNewConstMetric(c.maxProofDepth, prometheus.GaugeValue, float64(st.MaxProofDepth))
	ch <- prometheus.MustNewConstMetric(c.minProofDepth, prometheus.GaugeValue, float64(st.MinProofDepth))
	ch <- prometheus.MustNewConstMetric(c.totalProofSteps, prometheus.CounterValue, float64(st.TotalProofSteps))
	for method, count := range st.MethodCounts {
		ch <- prometheus.MustNewConstMetric(c.methodCounts, prometheus.CounterValue, float64(count), method)
	}
	ch <- prometheus.MustNewConstMetric(c.hdcQueries, prometheus.CounterValue, float64(st.HDCQueries))
	ch <- prometheus.MustNewConstMetric(c.hdcSuccesses, prometheus.CounterValue, float64(st.HDCSuccesses))
	ch <- prometheus.MustNewConstMetric(c.hdcBindings, prometheus.CounterValue, float64(st.HDCBindings))
	ch <- prometheus.MustNewConstMetric(c.holoSkipSymbolic, prometheus.CounterValue, float64(st.HoloSkipSymbolic))
}
