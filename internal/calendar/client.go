package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"calagent/internal/google"
)

// ErrNotFound is returned when the backend reports that an event does not
// exist (or no longer exists).
var ErrNotFound = errors.New("event not found")

// Client wraps the Google Calendar service for a single calendar.
type Client struct {
	svc        *calendar.Service
	account    string
	calendarID string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// CalendarID returns the calendar this client operates on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account.
func HasToken() bool {
	return HasTokenForAccount("default")
}

// newClient builds a Client on top of an already-authenticated HTTP
// client. An empty calendarID means the user's primary calendar.
func newClient(ctx context.Context, account, calendarID string, httpClient *http.Client) (*Client, error) {
	if calendarID == "" {
		calendarID = "primary"
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		account:    account,
		calendarID: calendarID,
	}, nil
}

// NewClientForAccountWithProvider creates a Calendar client authenticated
// through the given token provider, operating on the given calendar
// ("primary" for the user's primary calendar).
func NewClientForAccountWithProvider(ctx context.Context, account, calendarID string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	ts := google.GetOAuthConfig().TokenSource(ctx, token)
	return newClient(ctx, account, calendarID, google.NewAuthenticatedClient(ctx, ts))
}

// NewClientForAccount creates a Calendar client for a specific account
// backed by the on-disk token cache.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, account, "primary", httpClient)
}

// NewClient creates a Calendar client for the default account and the
// primary calendar.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListEventsInRange lists events whose interval intersects
// [timeMin, timeMax], ordered by start time. Recurring events are
// expanded to single instances. An empty result is a valid success.
func (c *Client) ListEventsInRange(timeMin, timeMax time.Time) ([]Event, error) {
	events, err := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var result []Event
	for _, event := range events.Items {
		result = append(result, toEvent(event))
	}
	return result, nil
}

// GetEvent retrieves a specific event by ID. A missing event is reported
// as ErrNotFound, not a generic failure.
func (c *Client) GetEvent(eventID string) (*Event, error) {
	event, err := c.svc.Events.Get(c.calendarID, eventID).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	result := toEvent(event)
	return &result, nil
}

// InsertEvent creates a new event and returns it with the backend-assigned
// ID and link.
func (c *Client) InsertEvent(input EventInput) (*Event, error) {
	event := &calendar.Event{
		Summary: input.Summary,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := toEvent(created)
	return &result, nil
}

// PatchEvent applies a partial update to an existing event. Only the
// fields set on the patch are sent; everything else keeps its stored
// value on the backend.
func (c *Client) PatchEvent(eventID string, patch EventPatch) (*Event, error) {
	body := &calendar.Event{}
	if patch.Summary != "" {
		body.Summary = patch.Summary
	}
	if !patch.Start.IsZero() {
		body.Start = &calendar.EventDateTime{
			DateTime: patch.Start.Format(time.RFC3339),
			TimeZone: patch.TimeZone,
		}
	}
	if !patch.End.IsZero() {
		body.End = &calendar.EventDateTime{
			DateTime: patch.End.Format(time.RFC3339),
			TimeZone: patch.TimeZone,
		}
	}

	updated, err := c.svc.Events.Patch(c.calendarID, eventID, body).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	result := toEvent(updated)
	return &result, nil
}

// DeleteEvent deletes an event.
func (c *Client) DeleteEvent(eventID string) error {
	if err := c.svc.Events.Delete(c.calendarID, eventID).Do(); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Timezone returns the IANA timezone configured on the user's calendar
// settings.
func (c *Client) Timezone() (string, error) {
	setting, err := c.svc.Settings.Get("timezone").Do()
	if err != nil {
		return "", fmt.Errorf("failed to get calendar timezone: %w", err)
	}
	return setting.Value, nil
}

// isNotFound reports whether the backend answered 404 or 410. The
// Calendar API returns 410 Gone for events deleted out from under us.
func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
