// Package store persists verification runs to SQLite.
//
// A run records the corpus hash and engine version alongside every rule
// verdict, so a stored report can always be matched to the exact corpus it
// verified. Writes are idempotent: re-saving a run is a no-op rather than an
// error, which lets a crashed invocation be retried blindly.
package store
