package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"calagent/internal/calendar"
)

// fakeCalendar is an in-memory CalendarAPI for tests.
type fakeCalendar struct {
	events map[string]calendar.Event
	nextID int

	deleteCalls int
	insertCalls int
	patchCalls  int
	listCalls   int

	listErr   error
	getErr    error
	insertErr error
	patchErr  error
	deleteErr error
}

func newFakeCalendar(events ...calendar.Event) *fakeCalendar {
	f := &fakeCalendar{events: make(map[string]calendar.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeCalendar) ListEventsInRange(timeMin, timeMax time.Time) ([]calendar.Event, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var result []calendar.Event
	for _, e := range f.events {
		if e.Start.Before(timeMax) && e.End.After(timeMin) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})
	return result, nil
}

func (f *fakeCalendar) GetEvent(eventID string) (*calendar.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, calendar.ErrNotFound
	}
	return &e, nil
}

func (f *fakeCalendar) InsertEvent(input calendar.EventInput) (*calendar.Event, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	f.nextID++
	e := calendar.Event{
		ID:       fmt.Sprintf("evt-%d", f.nextID),
		Summary:  input.Summary,
		Start:    input.Start,
		End:      input.End,
		TimeZone: input.TimeZone,
		HTMLLink: fmt.Sprintf("https://calendar.test/evt-%d", f.nextID),
	}
	f.events[e.ID] = e
	return &e, nil
}

func (f *fakeCalendar) PatchEvent(eventID string, patch calendar.EventPatch) (*calendar.Event, error) {
	f.patchCalls++
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return nil, calendar.ErrNotFound
	}

	if patch.Summary != "" {
		e.Summary = patch.Summary
	}
	if !patch.Start.IsZero() {
		e.Start = patch.Start
	}
	if !patch.End.IsZero() {
		e.End = patch.End
	}
	if patch.TimeZone != "" {
		e.TimeZone = patch.TimeZone
	}
	f.events[eventID] = e
	return &e, nil
}

func (f *fakeCalendar) DeleteEvent(eventID string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.events[eventID]; !ok {
		return calendar.ErrNotFound
	}
	delete(f.events, eventID)
	return nil
}

func (f *fakeCalendar) Timezone() (string, error) {
	return "UTC", nil
}

// scriptedModel replays a fixed sequence of replies and repeats the last
// one when the script runs out.
type scriptedModel struct {
	replies []*ModelReply
	calls   int
	err     error
}

func (m *scriptedModel) Generate(ctx context.Context, messages []Message) (*ModelReply, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i], nil
}

// toolCallReply builds an assistant turn requesting the given calls.
func toolCallReply(calls ...ToolCall) *ModelReply {
	return &ModelReply{
		Message: Message{Role: RoleAssistant, ToolCalls: calls},
	}
}

// answerReply builds a final-answer assistant turn.
func answerReply(a Answer) *ModelReply {
	return &ModelReply{
		Message: Message{Role: RoleAssistant, Content: a.Description},
		Answer:  &a,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(cal CalendarAPI, gate ConfirmationGate) *Dispatcher {
	if gate == nil {
		gate = &StaticGate{Approve: true}
	}
	return NewDispatcher(cal, gate, time.UTC, testLogger(), nil)
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}
