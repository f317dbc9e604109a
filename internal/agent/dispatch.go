package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"calagent/internal/calendar"
	"calagent/internal/instrumentation"
	"calagent/internal/logging"
)

// CalendarAPI is the calendar collaborator contract the dispatcher depends
// on. *calendar.Client satisfies it; tests use an in-memory fake. A
// missing event is reported as calendar.ErrNotFound.
type CalendarAPI interface {
	ListEventsInRange(timeMin, timeMax time.Time) ([]calendar.Event, error)
	GetEvent(eventID string) (*calendar.Event, error)
	InsertEvent(input calendar.EventInput) (*calendar.Event, error)
	PatchEvent(eventID string, patch calendar.EventPatch) (*calendar.Event, error)
	DeleteEvent(eventID string) error
	Timezone() (string, error)
}

// Dispatcher executes tool calls against the calendar. Failures come back
// as structured Results, never Go errors, so the model can read them and
// retry with corrected arguments or ask the user for clarification.
type Dispatcher struct {
	cal      CalendarAPI
	gate     ConfirmationGate
	checker  *ConflictChecker
	timezone *time.Location
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// NewDispatcher creates a dispatcher operating in the given timezone.
// A nil metrics recorder disables metric reporting.
func NewDispatcher(cal CalendarAPI, gate ConfirmationGate, timezone *time.Location, logger *slog.Logger, metrics *instrumentation.Metrics) *Dispatcher {
	if timezone == nil {
		timezone = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cal:      cal,
		gate:     gate,
		checker:  NewConflictChecker(cal),
		timezone: timezone,
		logger:   logger,
		metrics:  metrics,
	}
}

// Timezone returns the dispatcher's operating timezone.
func (d *Dispatcher) Timezone() *time.Location {
	return d.timezone
}

// Dispatch runs one tool call and returns its result. An unrecognized tool
// name or malformed arguments yield a validation error result.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) Result {
	kind, err := ParseToolKind(call.Name)
	if err != nil {
		d.logger.Warn("rejected tool call",
			logging.Tool(call.Name),
			logging.Err(err))
		return validationError(err)
	}

	start := time.Now()
	res := d.dispatch(ctx, kind, call.Args)
	elapsed := time.Since(start)

	d.logger.Info("tool call completed",
		logging.Tool(kind.String()),
		logging.Status(res.Status),
		slog.Duration(logging.KeyDuration, elapsed))
	if d.metrics != nil {
		d.metrics.RecordToolInvocation(ctx, kind.String(), res.Status, elapsed)
	}

	return res
}

// dispatch is the exhaustive switch over the closed tool set.
func (d *Dispatcher) dispatch(ctx context.Context, kind ToolKind, args map[string]interface{}) Result {
	switch kind {
	case ToolListEventsOnDate:
		return d.listEventsOnDate(args)
	case ToolGetEventInfo:
		return d.getEventInfo(args)
	case ToolCreateEvent:
		return d.createEvent(args)
	case ToolUpdateEvent:
		return d.updateEvent(args)
	case ToolDeleteEvent:
		return d.deleteEvent(ctx, args)
	case ToolCheckForConflicts:
		return d.checkForConflicts(args)
	default:
		// ParseToolKind only yields the cases above.
		return validationError(fmt.Errorf("unknown tool kind %v", kind))
	}
}

func (d *Dispatcher) listEventsOnDate(args map[string]interface{}) Result {
	var p ListEventsParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	dayStart, dayEnd := d.dayBounds(p.Date)
	events, err := d.cal.ListEventsInRange(dayStart, dayEnd)
	if err != nil {
		return backendError(err)
	}

	if len(events) == 0 {
		return successResult(fmt.Sprintf("No events found on %s.", p.Date))
	}
	res := successResult(fmt.Sprintf("Found %d events on %s.", len(events), p.Date))
	res.Events = toEventSummaries(events)
	return res
}

func (d *Dispatcher) getEventInfo(args map[string]interface{}) Result {
	var p GetEventInfoParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	event, err := d.cal.GetEvent(p.EventID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return errorResult(KindNotFound, fmt.Sprintf("Event %s not found.", p.EventID))
		}
		return backendError(err)
	}

	res := successResult(fmt.Sprintf("Found event %q.", event.Summary))
	summary := toEventSummary(*event)
	res.Event = &summary
	return res
}

func (d *Dispatcher) createEvent(args map[string]interface{}) Result {
	var p CreateEventParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	start, err := d.parseLocal(p.Date, p.Time)
	if err != nil {
		return validationError(err)
	}
	end := start.Add(time.Duration(p.DurationMinutes) * time.Minute)

	if !p.ForceIgnoreConflict {
		conflicts, err := d.checker.Check(calendar.TimeRange{
			Start:    start,
			End:      end,
			TimeZone: d.timezone.String(),
		}, "")
		if err != nil {
			return backendError(err)
		}
		if len(conflicts) > 0 {
			return conflictError(conflicts)
		}
	}

	created, err := d.cal.InsertEvent(calendar.EventInput{
		Summary:  p.Title,
		Start:    start,
		End:      end,
		TimeZone: d.timezone.String(),
	})
	if err != nil {
		return backendError(err)
	}

	res := successResult(fmt.Sprintf("Event %q created on %s at %s.", p.Title, p.Date, p.Time))
	summary := toEventSummary(*created)
	res.Event = &summary
	res.Link = created.HTMLLink
	return res
}

func (d *Dispatcher) updateEvent(args map[string]interface{}) Result {
	var p UpdateEventParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	existing, err := d.cal.GetEvent(p.EventID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return errorResult(KindNotFound, fmt.Sprintf("Event %s not found.", p.EventID))
		}
		return backendError(err)
	}

	patch, proposed, err := MergeUpdate(*existing, p, d.timezone)
	if err != nil {
		return validationError(err)
	}

	// Only a rewritten interval needs a conflict re-check, and the event
	// must not conflict with itself.
	if proposed != nil && !p.ForceIgnoreConflict {
		conflicts, err := d.checker.Check(*proposed, existing.ID)
		if err != nil {
			return backendError(err)
		}
		if len(conflicts) > 0 {
			return conflictError(conflicts)
		}
	}

	updated, err := d.cal.PatchEvent(p.EventID, patch)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return errorResult(KindNotFound, fmt.Sprintf("Event %s not found.", p.EventID))
		}
		return backendError(err)
	}

	res := successResult(fmt.Sprintf("Event %q updated.", updated.Summary))
	summary := toEventSummary(*updated)
	res.Event = &summary
	return res
}

func (d *Dispatcher) deleteEvent(ctx context.Context, args map[string]interface{}) Result {
	var p DeleteEventParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	event, err := d.cal.GetEvent(p.EventID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return errorResult(KindNotFound, fmt.Sprintf("Event %s not found.", p.EventID))
		}
		return backendError(err)
	}

	// Denial short-circuits without touching the backend.
	if !d.gate.Confirm(ctx, *event) {
		return canceledResult("Event deletion was canceled by the user.")
	}

	if err := d.cal.DeleteEvent(p.EventID); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return errorResult(KindNotFound, fmt.Sprintf("Event %s not found.", p.EventID))
		}
		return backendError(err)
	}

	return successResult(fmt.Sprintf("Event %q deleted.", event.Summary))
}

func (d *Dispatcher) checkForConflicts(args map[string]interface{}) Result {
	var p CheckConflictsParams
	if err := decodeParams(args, &p); err != nil {
		return validationError(err)
	}
	if err := p.Validate(); err != nil {
		return validationError(err)
	}

	start, err := d.parseLocal(p.Date, p.Time)
	if err != nil {
		return validationError(err)
	}
	end := start.Add(time.Duration(p.DurationMinutes) * time.Minute)

	conflicts, err := d.checker.Check(calendar.TimeRange{
		Start:    start,
		End:      end,
		TimeZone: d.timezone.String(),
	}, p.IgnoreID)
	if err != nil {
		return backendError(err)
	}

	if len(conflicts) == 0 {
		return successResult("No conflicts found.")
	}
	res := successResult(fmt.Sprintf("Found %d conflicting events.", len(conflicts)))
	res.Conflicts = toEventSummaries(conflicts)
	return res
}

// parseLocal parses a date and clock time in the operating timezone.
func (d *Dispatcher) parseLocal(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, d.timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// dayBounds returns the full local day [00:00:00, 23:59:59] for a date
// already validated against DateLayout. The end bound is derived from the
// next civil day so DST-transition days of 23 or 25 hours stay correct.
func (d *Dispatcher) dayBounds(date string) (time.Time, time.Time) {
	day, _ := time.ParseInLocation(DateLayout, date, d.timezone)
	next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, d.timezone)
	return day, next.Add(-time.Second)
}
