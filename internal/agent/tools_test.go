package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolKind(t *testing.T) {
	names := []string{
		NameListEventsOnDate,
		NameGetEventInfo,
		NameCreateEvent,
		NameUpdateEvent,
		NameDeleteEvent,
		NameCheckForConflicts,
	}
	for _, name := range names {
		kind, err := ParseToolKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, kind.String())
	}

	_, err := ParseToolKind("send_email")
	assert.Error(t, err)
	_, err = ParseToolKind("")
	assert.Error(t, err)
}

func TestCreateEventParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateEventParams
		wantErr bool
	}{
		{
			name: "valid",
			params: CreateEventParams{
				Title: "Sync", Date: "2025-06-15", Time: "14:00", DurationMinutes: 30,
			},
		},
		{
			name:   "zero duration gets the default",
			params: CreateEventParams{Title: "Sync", Date: "2025-06-15", Time: "14:00"},
		},
		{
			name: "negative duration",
			params: CreateEventParams{
				Title: "Sync", Date: "2025-06-15", Time: "14:00", DurationMinutes: -5,
			},
			wantErr: true,
		},
		{
			name:    "missing title",
			params:  CreateEventParams{Date: "2025-06-15", Time: "14:00"},
			wantErr: true,
		},
		{
			name:    "bad date",
			params:  CreateEventParams{Title: "Sync", Date: "15/06/2025", Time: "14:00"},
			wantErr: true,
		},
		{
			name:    "bad time",
			params:  CreateEventParams{Title: "Sync", Date: "2025-06-15", Time: "2pm"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Positive(t, tt.params.DurationMinutes)
		})
	}
}

func TestUpdateEventParams_Validate(t *testing.T) {
	assert.Error(t, (&UpdateEventParams{}).Validate())
	assert.NoError(t, (&UpdateEventParams{EventID: "evt-1"}).Validate())
	assert.Error(t, (&UpdateEventParams{EventID: "evt-1", NewDate: "tomorrow"}).Validate())
	assert.Error(t, (&UpdateEventParams{EventID: "evt-1", NewTime: "noon"}).Validate())
	assert.NoError(t, (&UpdateEventParams{EventID: "evt-1", NewDate: "2025-06-15", NewTime: "14:00"}).Validate())
}

func TestDecodeParams(t *testing.T) {
	// JSON numbers arrive as float64 in the argument map and must land in
	// integer fields.
	var p CreateEventParams
	err := decodeParams(map[string]interface{}{
		"event_title":      "Sync",
		"event_date_str":   "2025-06-15",
		"event_time_str":   "14:00",
		"duration_minutes": float64(45),
	}, &p)
	require.NoError(t, err)
	assert.Equal(t, 45, p.DurationMinutes)

	err = decodeParams(map[string]interface{}{
		"duration_minutes": "forty-five",
	}, &p)
	assert.Error(t, err)
}
