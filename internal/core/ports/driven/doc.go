// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RecordStore: Record persistence and the unprocessed-batch query
//   - ProcessStateStore: Per-job run status persistence
//   - SeenStore: Content hashes already ingested
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - AlertSink: Operational alerts. Without it, stalls are only logged.
//   - RunMetrics: Executor metrics. Without it, a no-op recorder is used.
//   - RuleStore: Authority and context rule tables. Without it, built-in defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
