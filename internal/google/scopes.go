package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultOAuthScopes are the Google OAuth scopes the assistant requests.
//
// Full calendar access is needed to create, update and delete events.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
}
