package agent

import (
	"encoding/json"
	"fmt"
	"time"
)

// ToolKind enumerates the calendar tools the model may call. The set is
// closed: dispatch is an exhaustive switch, and an unknown tool name is
// rejected at the boundary rather than falling through at runtime.
type ToolKind int

const (
	ToolListEventsOnDate ToolKind = iota
	ToolGetEventInfo
	ToolCreateEvent
	ToolUpdateEvent
	ToolDeleteEvent
	ToolCheckForConflicts
)

// Wire names of the tools, as declared in the model's tool schema.
const (
	NameListEventsOnDate  = "list_events_on_date"
	NameGetEventInfo      = "get_event_info"
	NameCreateEvent       = "create_event"
	NameUpdateEvent       = "update_event"
	NameDeleteEvent       = "delete_event"
	NameCheckForConflicts = "check_for_conflicts"
)

// DefaultDurationMinutes is used when the model omits an event duration.
const DefaultDurationMinutes = 30

// Date and time layouts used in tool arguments.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseToolKind maps a wire name to its ToolKind. An unrecognized name is
// a caller error.
func ParseToolKind(name string) (ToolKind, error) {
	switch name {
	case NameListEventsOnDate:
		return ToolListEventsOnDate, nil
	case NameGetEventInfo:
		return ToolGetEventInfo, nil
	case NameCreateEvent:
		return ToolCreateEvent, nil
	case NameUpdateEvent:
		return ToolUpdateEvent, nil
	case NameDeleteEvent:
		return ToolDeleteEvent, nil
	case NameCheckForConflicts:
		return ToolCheckForConflicts, nil
	default:
		return 0, fmt.Errorf("unknown tool %q", name)
	}
}

// String returns the wire name of the tool.
func (k ToolKind) String() string {
	switch k {
	case ToolListEventsOnDate:
		return NameListEventsOnDate
	case ToolGetEventInfo:
		return NameGetEventInfo
	case ToolCreateEvent:
		return NameCreateEvent
	case ToolUpdateEvent:
		return NameUpdateEvent
	case ToolDeleteEvent:
		return NameDeleteEvent
	case ToolCheckForConflicts:
		return NameCheckForConflicts
	default:
		return fmt.Sprintf("ToolKind(%d)", int(k))
	}
}

// ListEventsParams are the arguments for list_events_on_date.
type ListEventsParams struct {
	Date string `json:"target_date_str"`
}

// Validate checks that the date is a parseable calendar date.
func (p *ListEventsParams) Validate() error {
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.Date)
	}
	return nil
}

// GetEventInfoParams are the arguments for get_event_info.
type GetEventInfoParams struct {
	EventID string `json:"event_id"`
}

// Validate checks that an event identifier is present.
func (p *GetEventInfoParams) Validate() error {
	if p.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	return nil
}

// CreateEventParams are the arguments for create_event.
type CreateEventParams struct {
	Title               string `json:"event_title"`
	Date                string `json:"event_date_str"`
	Time                string `json:"event_time_str"`
	DurationMinutes     int    `json:"duration_minutes"`
	ForceIgnoreConflict bool   `json:"force_ignore_conflict"`
}

// Validate checks title, date/time parseability and a positive duration.
// A zero duration is filled with the default before validation applies.
func (p *CreateEventParams) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("event_title is required")
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.Date)
	}
	if _, err := time.Parse(TimeLayout, p.Time); err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", p.Time)
	}
	if p.DurationMinutes == 0 {
		p.DurationMinutes = DefaultDurationMinutes
	}
	if p.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", p.DurationMinutes)
	}
	return nil
}

// UpdateEventParams are the arguments for update_event. All fields except
// the event identifier are optional; unspecified fields keep their
// existing values on the event.
type UpdateEventParams struct {
	EventID             string `json:"event_id"`
	NewTitle            string `json:"new_title"`
	NewDate             string `json:"new_date_str"`
	NewTime             string `json:"new_time_str"`
	NewDurationMinutes  int    `json:"new_duration_minutes"`
	ForceIgnoreConflict bool   `json:"force_ignore_conflict"`
}

// Validate checks the identifier and any supplied date/time fields.
func (p *UpdateEventParams) Validate() error {
	if p.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if p.NewDate != "" {
		if _, err := time.Parse(DateLayout, p.NewDate); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.NewDate)
		}
	}
	if p.NewTime != "" {
		if _, err := time.Parse(TimeLayout, p.NewTime); err != nil {
			return fmt.Errorf("invalid time %q: expected HH:MM", p.NewTime)
		}
	}
	if p.NewDurationMinutes < 0 {
		return fmt.Errorf("new_duration_minutes must be positive, got %d", p.NewDurationMinutes)
	}
	return nil
}

// DeleteEventParams are the arguments for delete_event.
type DeleteEventParams struct {
	EventID string `json:"event_id"`
}

// Validate checks that an event identifier is present.
func (p *DeleteEventParams) Validate() error {
	if p.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	return nil
}

// CheckConflictsParams are the arguments for check_for_conflicts.
type CheckConflictsParams struct {
	Date            string `json:"event_date_str"`
	Time            string `json:"event_time_str"`
	DurationMinutes int    `json:"duration_minutes"`
	IgnoreID        string `json:"ignore_id"`
}

// Validate checks date/time parseability and fills the default duration.
func (p *CheckConflictsParams) Validate() error {
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", p.Date)
	}
	if _, err := time.Parse(TimeLayout, p.Time); err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", p.Time)
	}
	if p.DurationMinutes == 0 {
		p.DurationMinutes = DefaultDurationMinutes
	}
	if p.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must be positive, got %d", p.DurationMinutes)
	}
	return nil
}

// decodeParams converts the loosely-typed argument map the model produced
// into the tool's typed parameter struct. Shape mismatches (wrong JSON
// types, unparseable numbers) surface as decode errors and are rejected
// at the dispatch boundary.
func decodeParams(args map[string]interface{}, v interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed tool arguments: %w", err)
	}
	return nil
}
