package calendar_tools

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"calagent/internal/agent"
	"calagent/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nil, slog.Default())
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterCalendarTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test-server", "1.0.0")
	sc := newTestServerContext(t)

	if err := RegisterCalendarTools(s, sc, false); err != nil {
		t.Fatalf("RegisterCalendarTools() error = %v", err)
	}
}

func TestToToolResult(t *testing.T) {
	tests := []struct {
		name      string
		result    agent.Result
		wantError bool
		contains  string
	}{
		{
			name:      "success result",
			result:    agent.Result{Status: agent.StatusSuccess, Message: "Found 2 events on 2026-03-14."},
			wantError: false,
			contains:  `"status":"success"`,
		},
		{
			name:      "error result",
			result:    agent.Result{Status: agent.StatusError, Kind: agent.KindValidation, Message: "missing event_id"},
			wantError: true,
			contains:  `"kind":"validation"`,
		},
		{
			name:      "canceled result is not an error",
			result:    agent.Result{Status: agent.StatusCanceled, Message: "Event deletion was canceled by the user."},
			wantError: false,
			contains:  `"status":"canceled"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := toToolResult(tt.result)
			if res.IsError != tt.wantError {
				t.Errorf("IsError = %v, want %v", res.IsError, tt.wantError)
			}
			if len(res.Content) != 1 {
				t.Fatalf("expected 1 content item, got %d", len(res.Content))
			}
			tc, ok := res.Content[0].(mcp.TextContent)
			if !ok {
				t.Fatalf("expected text content, got %T", res.Content[0])
			}
			if !strings.Contains(tc.Text, tt.contains) {
				t.Errorf("content %q does not contain %q", tc.Text, tt.contains)
			}
		})
	}
}

func TestDispatcherForRequest_NoCalendarAccess(t *testing.T) {
	sc := newTestServerContext(t)

	args := map[string]interface{}{"account": "nonexistent-test-account"}
	if _, err := dispatcherForRequest(sc, args, false); err == nil {
		t.Fatal("expected error for account without a token")
	} else if !strings.Contains(err.Error(), "calagent auth") {
		t.Errorf("error %q should point at the auth command", err.Error())
	}
}

func TestHandleDispatch_NoCalendarAccess(t *testing.T) {
	sc := newTestServerContext(t)

	request := mcp.CallToolRequest{}
	request.Params.Name = agent.NameListEventsOnDate
	request.Params.Arguments = map[string]interface{}{
		"account":         "nonexistent-test-account",
		"target_date_str": "2026-03-14",
	}

	res, err := handleDispatch(context.Background(), request, sc, false, agent.NameListEventsOnDate)
	if err != nil {
		t.Fatalf("handleDispatch() error = %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result when no calendar token exists")
	}
}
