package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Event is the local representation of a calendar event. Instances are
// ephemeral, fetched or constructed per operation; the backend owns
// persistence and assigns ID and HTMLLink on creation.
type Event struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
	HTMLLink string
}

// Duration returns the event length derived from its interval. Duration
// is never stored independently of start and end.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// EventInput is the input for creating an event.
type EventInput struct {
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
}

// EventPatch carries the fields of a partial update. Zero values mean
// "leave untouched"; only supplied fields reach the backend.
type EventPatch struct {
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string
}

// IsZero reports whether the patch changes nothing.
func (p EventPatch) IsZero() bool {
	return p.Summary == "" && p.Start.IsZero() && p.End.IsZero()
}

// TimeRange is a transient interval used for conflict queries.
type TimeRange struct {
	Start    time.Time
	End      time.Time
	TimeZone string
}

// toEvent converts a Google Calendar event to our Event type.
func toEvent(event *calendar.Event) Event {
	if event == nil {
		return Event{}
	}

	result := Event{
		ID:       event.Id,
		Summary:  event.Summary,
		HTMLLink: event.HtmlLink,
	}

	// Timed events carry DateTime; all-day events carry Date only.
	if event.Start != nil {
		result.TimeZone = event.Start.TimeZone
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				result.Start = t
			}
		} else if event.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
				result.Start = t
			}
		}
	}

	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				result.End = t
			}
		} else if event.End.Date != "" {
			if t, err := time.Parse("2006-01-02", event.End.Date); err == nil {
				result.End = t
			}
		}
	}

	return result
}
