// Package logging provides structured logging utilities for the iris assistant.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler construction for text or JSON output
//   - Consistent attribute naming across the codebase
//   - A discarding logger for tests
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "assistant.turn")
//	logger.Info("turn completed",
//	    logging.Action("create"),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Conversation content and API keys are never logged directly. Use Digest for
// user text and SanitizeToken for credentials.
package logging
