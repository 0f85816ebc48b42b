/*
Package metrics provides Prometheus metrics collection and exposition for the
storage engine.

Metrics are registered at package init and exposed for scraping by a
Prometheus server; a HealthChecker tracks liveness/readiness of the
toc/index/schema subsystems for use behind a load balancer or orchestrator
probe.

# Metrics Catalog

fdb_dbs_open:
  - Type: Gauge
  - Description: number of database directories currently open in the manager cache

fdb_indexes_open:
  - Type: Gauge
  - Description: number of index files currently open across cached databases

fdb_archive_duration_seconds:
  - Type: Histogram
  - Description: time to archive a single field

fdb_archive_total{result}:
  - Type: Counter
  - Description: fields archived, by result ("ok", "error")

fdb_retrieve_duration_seconds:
  - Type: Histogram
  - Description: time to expand and resolve a retrieve request

fdb_retrieve_handles_total:
  - Type: Counter
  - Description: data handles returned across all retrieve requests

fdb_index_puts_total:
  - Type: Counter
  - Description: field entries written to index files

fdb_index_double_inserts_total:
  - Type: Counter
  - Description: rejected double-inserts into an index

fdb_toc_records_total{tag}:
  - Type: Counter
  - Description: TOC records appended, by tag (TOC_INIT/TOC_INDEX/TOC_CLEAR/TOC_WIPE/TOC_SUB_TOC)

fdb_purge_reclaimed_bytes_total:
  - Type: Counter
  - Description: bytes reclaimed by purging duplicate and orphan index files

fdb_wipe_total:
  - Type: Counter
  - Description: database directories wiped

# Usage

	timer := metrics.NewTimer()
	err := archiver.Archive(key, payload)
	timer.ObserveDuration(metrics.ArchiveDuration)
	if err != nil {
		metrics.ArchiveTotal.WithLabelValues("error").Inc()
	} else {
		metrics.ArchiveTotal.WithLabelValues("ok").Inc()
	}

Expose the registry and health endpoints from cmd/fdb-admin or any serving
process:

	http.Handle("/metrics", metrics.Handler())
	http.HandleFunc("/health", metrics.HealthHandler())
	http.HandleFunc("/ready", metrics.ReadyHandler())
*/
package metrics
