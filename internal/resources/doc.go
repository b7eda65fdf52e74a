// Package resources provides MCP resources for exposing conversation data.
// Resources are read-only data sources that MCP clients can fetch. The
// assistant publishes its transcript and the event it last created or updated
// so that a client can inspect the session without sending a message.
package resources
