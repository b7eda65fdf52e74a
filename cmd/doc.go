// Package cmd implements the command-line interface for iris.
//
// This package provides the following commands:
//   - chat: Talk to the assistant in the terminal (default)
//   - serve: Run the assistant as an MCP server over stdio
//   - history: Print a stored transcript or list SQLite sessions
//   - auth: Authorize Google Calendar access
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for the MCP tools
//
// Configuration comes from flags, IRIS_* environment variables and an
// optional iris.yaml, in that order of precedence.
package cmd
