// Package assistant_tools exposes the calendar assistant over MCP.
//
// Two tools are registered. assistant_send_message runs one conversation
// turn; since an MCP client cannot answer an interactive prompt, deletions
// only go ahead when the call sets confirm=true. assistant_get_history
// returns the transcript and the last create or update.
package assistant_tools
