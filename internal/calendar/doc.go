// Package calendar provides a client for interacting with the Google Calendar API.
//
// The client operates on a single calendar (normally the user's primary
// calendar) and exposes the operations the assistant core needs: listing
// events in a time range, fetching, creating, patching and deleting single
// events, and reading the calendar's configured timezone.
//
// All times crossing this boundary are RFC3339 instants with an explicit
// timezone. A missing event is reported as ErrNotFound rather than a
// generic failure so callers can distinguish absence from backend trouble.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List today's events
//	events, err := client.ListEventsInRange(dayStart, dayEnd)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
