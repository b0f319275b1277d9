// Package telemetry reports session outcomes through Prometheus. Recording
// is best-effort by construction: collectors are in-process, so a reporting
// call can never fail a session. Session identifiers ride on structured logs
// and the ledger rather than metric labels to keep cardinality bounded; the
// error-kind dimension is preserved as a label.
package telemetry
