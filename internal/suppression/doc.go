// Package suppression decides whether a popup has already been shown often
// enough to be withheld from a viewer, and records each display.
//
// It is the single source of truth for frequency capping. The frequency rules
// (session / days / always) live in Policy; where the shown-records are kept
// is behind the Store interface, with an in-memory implementation for tests
// and a Redis implementation for production.
//
// Failure policy: suppression is a low-stakes promotional concern. A store
// that errors must never block a page — reads degrade to "not suppressed" and
// writes are dropped with a log line. Nothing in this package panics or
// propagates store errors to callers.
package suppression
