// Package storage defines the keyed persistence contract shared by every
// engine and the lazily opened Connection the stores run against.
//
// An engine holds named collections of JSON records keyed by id. Engines
// return the sentinel errors declared here; the stores translate them into
// OpenError, ReadError and WriteError for callers.
package storage
