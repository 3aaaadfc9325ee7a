// Package logging assembles structured slog loggers and formatting helpers used
// across animewatch.
//
// It owns the console and JSON handlers, routes daemon output to a rotating
// log file, and exposes context-aware helpers so request handlers can tag log
// lines with correlation IDs. A no-op logger is provided for tests and wiring
// code that cannot fail.
package logging
