// Package sync keeps the local and the remote equipment stores in step.
//
// It wires both equipment stores into the reconcile engine and adds what the
// engine leaves to its caller:
//
//   - Service: runs passes through a single-flight coordinator, retries whole
//     passes with backoff, logs the report, counts it in Prometheus and
//     publishes it to RabbitMQ.
//   - Scheduler: periodic passes with backoff after failures.
//   - Trigger: background pass after local writes.
//   - HTTP: POST /api/sync (?dry_run=true), GET /api/sync/last, GET /api/sync/status.
//
// Without a configured remote store every run returns ErrSyncDisabled.
package sync
