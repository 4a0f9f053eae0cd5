// Package alert provides AlertSink implementations: an HTTP webhook
// sink for chat integrations and a log sink used when no webhook is set.
//
// Delivery is best effort. The executor logs failures and carries on.
package alert
