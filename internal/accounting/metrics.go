package accounting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
)

// Metrics observes report generation.
type Metrics struct {
	builds        *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	upstreamFails *prometheus.CounterVec
	warnings      *prometheus.CounterVec
}

// NewMetrics registers the report collectors. A nil registerer uses the
// default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		builds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgerbook_report_build_duration_seconds",
			Help:    "Duration required to fetch and aggregate a financial statement.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerbook_report_cache_hits_total",
			Help: "Number of reports served from the cache.",
		}, []string{"report"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerbook_report_cache_miss_total",
			Help: "Number of reports generated on a cache miss.",
		}, []string{"report"}),
		upstreamFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerbook_report_upstream_failures_total",
			Help: "Number of report requests failed by the ledger data store.",
		}, []string{"report"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerbook_report_forest_warnings_total",
			Help: "Inconsistent account records tolerated while building reports.",
		}, []string{"report"}),
	}
	reg.MustRegister(m.builds, m.cacheHits, m.cacheMisses, m.upstreamFails, m.warnings)
	return m
}

func (m *Metrics) observeBuild(t reports.ReportType, d time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(string(t)).Observe(d.Seconds())
}

func (m *Metrics) observeCache(t reports.ReportType, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.WithLabelValues(string(t)).Inc()
		return
	}
	m.cacheMisses.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) upstreamFailure(t reports.ReportType) {
	if m == nil {
		return
	}
	m.upstreamFails.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) addWarnings(t reports.ReportType, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.warnings.WithLabelValues(string(t)).Add(float64(n))
}
