package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calagent/internal/calendar"
)

// Result statuses. Tools report failures as ordinary results rather than
// Go errors so the model can read them and retry, ask the user for
// clarification, or give up gracefully.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// Error kinds carried on error results. The model treats these as tool
// output; hosts may additionally branch on them.
const (
	KindValidation = "validation"
	KindConflict   = "conflict"
	KindNotFound   = "not_found"
	KindBackend    = "backend_unavailable"
)

// EventSummary is the JSON-friendly event representation placed in tool
// results.
type EventSummary struct {
	ID      string `json:"event_id,omitempty"`
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Link    string `json:"htmlLink,omitempty"`
}

// Result is the outcome of one tool invocation, serialized as JSON into
// the tool result message the model reads next.
type Result struct {
	Status    string         `json:"status,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Message   string         `json:"message,omitempty"`
	Events    []EventSummary `json:"events,omitempty"`
	Event     *EventSummary  `json:"event,omitempty"`
	Conflicts []EventSummary `json:"conflicts,omitempty"`
	Link      string         `json:"link,omitempty"`
}

// JSON returns the result serialized for the tool result message.
func (r Result) JSON() string {
	raw, err := json.Marshal(r)
	if err != nil {
		// Result contains only marshalable fields; this is unreachable
		// short of memory corruption.
		return fmt.Sprintf(`{"status":%q,"message":"failed to encode result"}`, StatusError)
	}
	return string(raw)
}

func successResult(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func errorResult(kind, message string) Result {
	return Result{Status: StatusError, Kind: kind, Message: message}
}

func canceledResult(message string) Result {
	return Result{Status: StatusCanceled, Message: message}
}

func validationError(err error) Result {
	return errorResult(KindValidation, err.Error())
}

func backendError(err error) Result {
	return errorResult(KindBackend, err.Error())
}

// conflictError builds the error the model receives when a proposed
// interval collides with existing events. The message names the
// conflicting events' titles so the model can relay them to the user.
func conflictError(conflicts []calendar.Event) Result {
	names := make([]string, len(conflicts))
	for i, c := range conflicts {
		names[i] = c.Summary
	}
	r := errorResult(KindConflict, "Event conflicts with existing events: "+strings.Join(names, ", "))
	r.Conflicts = toEventSummaries(conflicts)
	return r
}

func toEventSummary(e calendar.Event) EventSummary {
	return EventSummary{
		ID:      e.ID,
		Summary: e.Summary,
		Start:   e.Start.Format(time.RFC3339),
		End:     e.End.Format(time.RFC3339),
		Link:    e.HTMLLink,
	}
}

func toEventSummaries(events []calendar.Event) []EventSummary {
	if len(events) == 0 {
		return nil
	}
	summaries := make([]EventSummary, len(events))
	for i, e := range events {
		summaries[i] = toEventSummary(e)
	}
	return summaries
}
