/*
Package log provides structured logging for the fdb storage engine using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific child loggers, configurable severity levels, and helper
functions for the handful of logging patterns that recur across the engine:
tagging a line with the DB key being written, the schema path a rule tree was
loaded from, or the request correlating several archive/retrieve log lines.

# Core components

Global Logger:
  - Package-level zerolog.Logger instance.
  - Initialized once via log.Init() at process start.
  - Thread-safe for concurrent archivers/retrievers.

Log Levels:
  - Debug: rule-matching detail, TOC record offsets, index lookups.
  - Info: DB opened/closed, flush completed, purge summary.
  - Warn: schema drift (on-disk schema differs from master), retry.
  - Error: operation failed (I/O error, permission error, version error).
  - Fatal: unrecoverable startup errors only.

Context Loggers:
  - WithComponent: tag logs with the subsystem ("schema", "toc", "index",
    "archiver", "retriever").
  - WithDB: tag logs with the canonical DB key.
  - WithRequest: tag logs with an opaque request/operation id.
  - WithSchema: tag logs with the schema file path involved.

# Usage

	import "github.com/ecmwf/fdb-go/pkg/log"

	// JSON output (production)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	// Console output (development)
	log.Init(log.Config{
		Level:      log.DebugLevel,
		JSONOutput: false,
	})

	dbLog := log.WithDB("od:0001:oper:20210427:1200:g")
	dbLog.Info().Int("records", 3).Msg("flush complete")

	log.Errorf("archive failed", err)

# Log output examples

JSON:

	{"level":"info","db_key":"od:0001:oper:20210427:1200:g","records":3,"time":"2026-07-31T10:30:00Z","message":"flush complete"}

Console:

	2026-07-31T10:30:00Z INF flush complete db_key=od:0001:oper:20210427:1200:g records=3

# Design patterns

Global Logger Pattern:
  - Single package-level Logger, initialized once, passed implicitly.

Context Logger Pattern:
  - Create child loggers carrying fixed fields (db_key, schema_path,
    request_id) and pass those down instead of repeating the field at every
    call site.

Error Logging Pattern:
  - Always attach the error with .Err(err); never format it into the
    message string, so log aggregation can filter on error presence.

# Security

Never log field bytes, secrets, or full request payloads — only keys,
paths, and sizes. Structured fields (.Str, .Int) avoid log injection from
user-supplied keyword values.
*/
package log
