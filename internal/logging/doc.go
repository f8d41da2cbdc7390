// Package logging builds the slog loggers used across the career builder.
//
// It offers a console (pretty) handler for interactive use, a JSON handler
// for machine consumption, attribute helpers that keep call sites terse, and
// a progress sampler that bounds how often scan progress is emitted. Obtain
// package loggers through NewComponentLogger so every record carries a
// component attribute.
package logging
