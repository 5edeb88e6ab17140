// Package logger provides structured logging for MemRes tooling.
//
// It wraps the standard library log/slog to provide structured JSON
// logging for the bench CLI and its supporting services.
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - A process-wide default logger for convenience
package logger
