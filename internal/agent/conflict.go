package agent

import (
	"fmt"

	"calagent/internal/calendar"
)

// ConflictChecker finds existing events whose interval overlaps a proposed
// one. Boundary semantics are delegated to the backend's interval query;
// the checker does not redefine them locally and performs no mutation.
type ConflictChecker struct {
	cal CalendarAPI
}

// NewConflictChecker creates a checker backed by the given calendar.
func NewConflictChecker(cal CalendarAPI) *ConflictChecker {
	return &ConflictChecker{cal: cal}
}

// Check returns the events overlapping the proposed interval, excluding the
// event with the given ID if ignoreID is non-empty. Excluding an event's
// own ID is how an update avoids conflicting with itself. An empty slice
// means no conflict.
func (c *ConflictChecker) Check(proposed calendar.TimeRange, ignoreID string) ([]calendar.Event, error) {
	events, err := c.cal.ListEventsInRange(proposed.Start, proposed.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicting events: %w", err)
	}

	var conflicts []calendar.Event
	for _, e := range events {
		if ignoreID != "" && e.ID == ignoreID {
			continue
		}
		conflicts = append(conflicts, e)
	}
	return conflicts, nil
}
