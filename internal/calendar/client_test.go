package calendar

import (
	"testing"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

func TestToEvent_Nil(t *testing.T) {
	// This test ensures toEvent correctly handles a nil event
	event := toEvent(nil)
	if event.ID != "" {
		t.Errorf("Expected empty ID for nil event, got %s", event.ID)
	}
}

func TestToEvent_TimedEvent(t *testing.T) {
	event := toEvent(&calendar.Event{
		Id:       "evt-1",
		Summary:  "Standup",
		HtmlLink: "https://calendar.google.com/event?eid=evt-1",
		Start: &calendar.EventDateTime{
			DateTime: "2025-06-14T09:00:00Z",
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: "2025-06-14T09:30:00Z",
			TimeZone: "UTC",
		},
	})

	if event.ID != "evt-1" {
		t.Errorf("ID = %s, want evt-1", event.ID)
	}
	if event.Summary != "Standup" {
		t.Errorf("Summary = %s, want Standup", event.Summary)
	}
	if event.TimeZone != "UTC" {
		t.Errorf("TimeZone = %s, want UTC", event.TimeZone)
	}
	if event.Duration() != 30*time.Minute {
		t.Errorf("Duration = %v, want 30m", event.Duration())
	}
}

func TestToEvent_AllDayEvent(t *testing.T) {
	// All-day events carry Date instead of DateTime
	event := toEvent(&calendar.Event{
		Id:      "evt-2",
		Summary: "Conference",
		Start:   &calendar.EventDateTime{Date: "2025-06-14"},
		End:     &calendar.EventDateTime{Date: "2025-06-15"},
	})

	if event.Start.IsZero() {
		t.Error("Expected non-zero start time for all-day event")
	}
	if event.Duration() != 24*time.Hour {
		t.Errorf("Duration = %v, want 24h", event.Duration())
	}
}

func TestHasToken(t *testing.T) {
	// Test that HasToken returns a boolean without error
	result := HasToken()
	// We don't care about the actual value, just that it doesn't panic
	_ = result
}

func TestHasTokenForAccount(t *testing.T) {
	// Test that HasTokenForAccount returns a boolean for valid account name
	result := HasTokenForAccount("test-account")
	_ = result

	// Test with empty account name
	result = HasTokenForAccount("")
	if result {
		t.Error("Expected false for empty account name")
	}
}

func TestEventInput_Validation(t *testing.T) {
	// Test EventInput structure with various valid inputs
	tests := []struct {
		name  string
		input EventInput
	}{
		{
			name: "valid basic event",
			input: EventInput{
				Summary: "Test Event",
				Start:   time.Now(),
				End:     time.Now().Add(time.Hour),
			},
		},
		{
			name: "event with explicit timezone",
			input: EventInput{
				Summary:  "Morning Review",
				Start:    time.Now(),
				End:      time.Now().Add(30 * time.Minute),
				TimeZone: "Europe/Berlin",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Verify the input structure is correctly formed
			if tt.input.Summary == "" {
				t.Error("Expected non-empty summary")
			}
			if tt.input.Start.IsZero() {
				t.Error("Expected non-zero start time")
			}
			if tt.input.End.IsZero() {
				t.Error("Expected non-zero end time")
			}
			if tt.input.End.Before(tt.input.Start) {
				t.Error("End time should be after start time")
			}
		})
	}
}

func TestEventPatch_IsZero(t *testing.T) {
	var empty EventPatch
	if !empty.IsZero() {
		t.Error("Expected zero patch to report IsZero")
	}

	titled := EventPatch{Summary: "Renamed"}
	if titled.IsZero() {
		t.Error("Expected patch with summary to not be zero")
	}

	timed := EventPatch{Start: time.Now(), End: time.Now().Add(time.Hour)}
	if timed.IsZero() {
		t.Error("Expected patch with times to not be zero")
	}
}

func TestTimeRange_Structure(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	r := TimeRange{Start: now, End: later, TimeZone: "UTC"}

	if r.Start.After(r.End) {
		t.Error("Start time should be before end time")
	}
	if r.TimeZone != "UTC" {
		t.Errorf("TimeZone = %s, want UTC", r.TimeZone)
	}
}
