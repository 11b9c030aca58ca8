// Package logging assembles the structured slog loggers used across gendonk.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with run and fine-tuning job
// identifiers. NewNop provides a discarding logger for tests and wiring code
// that cannot fail.
package logging
