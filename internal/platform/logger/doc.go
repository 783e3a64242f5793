// Package logger provides structured logging for the application on top of
// log/slog: JSON output at a configurable level, plus helpers that carry a
// request-scoped logger through a context.Context.
package logger
