// Package calendar provides a client for the Google Calendar API scoped to what
// the assistant needs: listing and searching upcoming events, and creating,
// updating and deleting single events.
//
// Event times cross this package as ISO-8601 strings because they come
// straight from model output. Strings that cannot be parsed are rejected with
// ErrInvalidTime before any request is made.
//
// Every call records the google_api_operations_total metric and a
// google.calendar.<operation> span.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, httpClient,
//	    calendar.WithTimeZone("America/Edmonton"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListUpcoming(ctx, 10)
package calendar
