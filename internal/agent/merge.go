package agent

import (
	"fmt"
	"time"

	"calagent/internal/calendar"
)

// MergeUpdate builds the partial update body for an event from the fields
// the caller actually supplied, filling the gaps from the existing event.
//
// The title is replaced only when a non-empty new title was given. If
// neither a new date nor a new time was supplied the interval is left
// untouched and the returned TimeRange is nil. Otherwise the missing half
// is taken from the existing event's start in the operating timezone, and
// the duration comes from the caller's new duration or, when absent, from
// the existing event's own start/end difference. Editing only the time of
// an event must not change its length. The new end is always start plus
// duration.
//
// The returned TimeRange, when non-nil, is the rewritten interval the
// caller must re-check for conflicts.
func MergeUpdate(existing calendar.Event, params UpdateEventParams, loc *time.Location) (calendar.EventPatch, *calendar.TimeRange, error) {
	patch := calendar.EventPatch{Summary: params.NewTitle}

	if params.NewDate == "" && params.NewTime == "" {
		return patch, nil, nil
	}

	date := params.NewDate
	if date == "" {
		date = existing.Start.In(loc).Format(DateLayout)
	}
	clock := params.NewTime
	if clock == "" {
		clock = existing.Start.In(loc).Format(TimeLayout)
	}

	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return calendar.EventPatch{}, nil, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}

	duration := existing.Duration()
	if params.NewDurationMinutes > 0 {
		duration = time.Duration(params.NewDurationMinutes) * time.Minute
	}
	end := start.Add(duration)

	patch.Start = start
	patch.End = end
	patch.TimeZone = loc.String()

	proposed := &calendar.TimeRange{Start: start, End: end, TimeZone: loc.String()}
	return patch, proposed, nil
}
