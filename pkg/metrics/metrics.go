package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Database cache metrics
	DBsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fdb_dbs_open",
			Help: "Number of database directories currently open in the manager cache",
		},
	)

	IndexesOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fdb_indexes_open",
			Help: "Number of index files currently open across all cached databases",
		},
	)

	// Archive path metrics
	ArchiveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fdb_archive_duration_seconds",
			Help:    "Time taken to archive a single field",
			Buckets: prometheus.DefBuckets,
		},
	)

	ArchiveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdb_archive_total",
			Help: "Total number of fields archived, by result",
		},
		[]string{"result"},
	)

	// Retrieve path metrics
	RetrieveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fdb_retrieve_duration_seconds",
			Help:    "Time taken to expand and resolve a retrieve request",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetrieveHandlesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fdb_retrieve_handles_total",
			Help: "Total number of data handles returned across all retrieve requests",
		},
	)

	// Index metrics
	IndexPutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fdb_index_puts_total",
			Help: "Total number of field entries written to index files",
		},
	)

	IndexDoubleInsertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fdb_index_double_inserts_total",
			Help: "Total number of rejected double-inserts into an index",
		},
	)

	// TOC metrics
	TOCRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdb_toc_records_total",
			Help: "Total number of TOC records appended, by tag",
		},
		[]string{"tag"},
	)

	// Purge/wipe metrics
	PurgeReclaimedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fdb_purge_reclaimed_bytes_total",
			Help: "Total bytes reclaimed by purging duplicate and orphan index files",
		},
	)

	WipeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fdb_wipe_total",
			Help: "Total number of database directories wiped",
		},
	)
)

func init() {
	prometheus.MustRegister(DBsOpen)
	prometheus.MustRegister(IndexesOpen)
	prometheus.MustRegister(ArchiveDuration)
	prometheus.MustRegister(ArchiveTotal)
	prometheus.MustRegister(RetrieveDuration)
	prometheus.MustRegister(RetrieveHandlesTotal)
	prometheus.MustRegister(IndexPutsTotal)
	prometheus.MustRegister(IndexDoubleInsertsTotal)
	prometheus.MustRegister(TOCRecordsTotal)
	prometheus.MustRegister(PurgeReclaimedBytesTotal)
	prometheus.MustRegister(WipeTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
