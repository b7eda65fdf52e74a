// Package google provides OAuth2 authentication and token storage for the
// Google Calendar API.
//
// Client credentials come from a credentials.json downloaded from the Google
// Cloud console. The user's token is kept in a token file next to it. When no
// token exists the CLI runs an interactive authorization: it prints the
// consent URL and reads the authorization code from the terminal.
//
// The TokenProvider interface allows other token sources to be plugged in.
package google
