// Package connectors provides the sources records are read from before
// ingestion. Each connector knows how to turn one kind of upstream
// extraction output into domain records.
package connectors
