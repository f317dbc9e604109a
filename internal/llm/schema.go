package llm

import (
	"google.golang.org/genai"

	"calagent/internal/agent"
)

// toolSchema declares the six calendar tools for the model. The names and
// parameter shapes must stay in lockstep with the agent package's tool
// parameter structs.
func toolSchema() []*genai.Tool {
	dateProp := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc + " in YYYY-MM-DD format."}
	}
	timeProp := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc + " in 24-hour HH:MM format."}
	}

	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        agent.NameListEventsOnDate,
				Description: "List all calendar events on a given date, searching the entire day.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"target_date_str": dateProp("The date to list events for"),
					},
					Required: []string{"target_date_str"},
				},
			},
			{
				Name:        agent.NameGetEventInfo,
				Description: "Fetch the full details of a single calendar event by its identifier.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"event_id": {Type: genai.TypeString, Description: "The event identifier."},
					},
					Required: []string{"event_id"},
				},
			},
			{
				Name:        agent.NameCreateEvent,
				Description: "Create a new calendar event. Fails with a conflict error if the slot overlaps existing events, unless force_ignore_conflict is set.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"event_title":    {Type: genai.TypeString, Description: "The event title."},
						"event_date_str": dateProp("The event date"),
						"event_time_str": timeProp("The event start time"),
						"duration_minutes": {
							Type:        genai.TypeInteger,
							Description: "Event length in minutes. Defaults to 30 when omitted.",
						},
						"force_ignore_conflict": {
							Type:        genai.TypeBoolean,
							Description: "Create the event even if it conflicts with existing events. Only set after the user explicitly agreed.",
						},
					},
					Required: []string{"event_title", "event_date_str", "event_time_str"},
				},
			},
			{
				Name:        agent.NameUpdateEvent,
				Description: "Update an existing event. Only supplied fields change; changing only the time keeps the event's current length.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"event_id":     {Type: genai.TypeString, Description: "The event identifier."},
						"new_title":    {Type: genai.TypeString, Description: "A new title for the event."},
						"new_date_str": dateProp("A new date for the event"),
						"new_time_str": timeProp("A new start time for the event"),
						"new_duration_minutes": {
							Type:        genai.TypeInteger,
							Description: "A new length in minutes. When omitted the event keeps its current length.",
						},
						"force_ignore_conflict": {
							Type:        genai.TypeBoolean,
							Description: "Apply the update even if the new slot conflicts with existing events. Only set after the user explicitly agreed.",
						},
					},
					Required: []string{"event_id"},
				},
			},
			{
				Name:        agent.NameDeleteEvent,
				Description: "Delete a calendar event. The user is asked to confirm before anything is removed.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"event_id": {Type: genai.TypeString, Description: "The event identifier."},
					},
					Required: []string{"event_id"},
				},
			},
			{
				Name:        agent.NameCheckForConflicts,
				Description: "Check whether a proposed time slot overlaps existing events, without changing anything.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"event_date_str": dateProp("The proposed date"),
						"event_time_str": timeProp("The proposed start time"),
						"duration_minutes": {
							Type:        genai.TypeInteger,
							Description: "Proposed length in minutes. Defaults to 30 when omitted.",
						},
						"ignore_id": {
							Type:        genai.TypeString,
							Description: "An event identifier to exclude, used when checking an event against itself.",
						},
					},
					Required: []string{"event_date_str", "event_time_str"},
				},
			},
		},
	}}
}
