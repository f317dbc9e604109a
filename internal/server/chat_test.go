package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"calagent/internal/agent"
	"calagent/internal/calendar"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), nil, slog.Default())
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func postJSON(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler_RejectsNonPost(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	h.chatHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestChatHandler_RejectsInvalidBody(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.chatHandler(), "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestChatHandler_RejectsEmptyMessage(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.chatHandler(), `{"message": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if !strings.Contains(body.Error, "message") {
		t.Errorf("error = %q, want mention of message", body.Error)
	}
}

func TestChatHandler_UnknownSession(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.chatHandler(), `{"message": "hi", "session_id": "no-such-session"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChatHandler_NoCalendarAccess(t *testing.T) {
	// The test context has no cached calendar clients and no token on
	// disk for this account, so the chat turn cannot start.
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.chatHandler(), `{"message": "hi", "account": "nonexistent-test-account"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if !strings.Contains(body.Error, "calagent auth") {
		t.Errorf("error = %q, want auth hint", body.Error)
	}
	// Full authorization instructions, URL included.
	if !strings.Contains(body.Error, "Visit this URL") {
		t.Errorf("error = %q, want authorization instructions", body.Error)
	}
}

// immediateModel answers every turn without tool calls so chat turns
// complete offline.
type immediateModel struct{}

func (immediateModel) Generate(_ context.Context, _ []agent.Message) (*agent.ModelReply, error) {
	return &agent.ModelReply{
		Message: agent.Message{Role: agent.RoleAssistant, Content: "ok"},
	}, nil
}

// staticTokenProvider hands out a token that never needs refreshing, so
// building a calendar client stays offline.
type staticTokenProvider struct{}

func (staticTokenProvider) GetTokenForAccount(_ context.Context, _ string) (*oauth2.Token, error) {
	return &oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (staticTokenProvider) HasTokenForAccount(string) bool { return true }

func TestChatHandler_ConcurrentTurnsOnOneSession(t *testing.T) {
	ctx := context.Background()
	sc, err := NewServerContext(ctx, immediateModel{}, slog.Default())
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })

	client, err := calendar.NewClientForAccountWithProvider(ctx, "default", "primary", staticTokenProvider{})
	if err != nil {
		t.Fatalf("creating calendar client: %v", err)
	}
	sc.SetCalendarClientForAccount("default", client)

	h := NewChatHandler(sc)
	session := sc.Sessions().Create("default", "UTC")

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := postJSON(t, h.chatHandler(),
				fmt.Sprintf(`{"message": "hi", "session_id": %q}`, session.ID))
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
			}
		}()
	}
	wg.Wait()

	// Runs were serialized: every turn saw the previous one's history,
	// so each appended exactly its user and assistant messages.
	got, err := sc.Sessions().Get(session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if want := 1 + 2*turns; len(got.History) != want {
		t.Errorf("History length = %d, want %d", len(got.History), want)
	}
}

func TestConfirmHandler_RequiresEventID(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.confirmHandler(), `{"approve": true}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestConfirmHandler_NothingPending(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.confirmHandler(), `{"event_id": "evt-1", "approve": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body ConfirmResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Resolved {
		t.Error("expected Resolved to be false when nothing is waiting")
	}
}

func TestPendingHandler_Empty(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	req := httptest.NewRequest(http.MethodGet, "/confirm/pending", nil)
	rec := httptest.NewRecorder()
	h.pendingHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body PendingResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.EventIDs) != 0 {
		t.Errorf("EventIDs length = %d, want 0", len(body.EventIDs))
	}
}

func TestPendingHandler_RejectsPost(t *testing.T) {
	h := NewChatHandler(newTestServerContext(t))

	rec := postJSON(t, h.pendingHandler(), `{}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	if sc.IsShutdown() {
		t.Error("expected fresh context to not be shutdown")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("expected context to report shutdown")
	}

	// Idempotent
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}
