// Package logging assembles structured slog loggers and formatting helpers used
// across trackalign packages.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes helpers so every component tags its lines the same way: a
// component name, a run correlation id, and event_type/error_hint/impact on
// warnings. A no-op logger is provided for tests and for library callers that
// do not care about diagnostics.
package logging
