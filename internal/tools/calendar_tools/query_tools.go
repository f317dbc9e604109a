package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"calagent/internal/agent"
	"calagent/internal/instrumentation"
	"calagent/internal/server"
	"calagent/internal/tools/common"
)

// RegisterQueryTools registers the read-only calendar tools with the MCP
// server.
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext, yolo bool) error {
	listEventsTool := mcp.NewTool(agent.NameListEventsOnDate,
		mcp.WithDescription("List all calendar events on a given date, searching the entire day."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone for interpreting dates and times (e.g. 'Europe/Berlin'). Defaults to the calendar's own time zone."),
		),
		mcp.WithString("target_date_str",
			mcp.Required(),
			mcp.Description("The date to list events for, in YYYY-MM-DD format."),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameListEventsOnDate, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameListEventsOnDate)
		}))

	getEventTool := mcp.NewTool(agent.NameGetEventInfo,
		mcp.WithDescription("Fetch the full details of a single calendar event by its identifier."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The event identifier."),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameGetEventInfo, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameGetEventInfo)
		}))

	checkConflictsTool := mcp.NewTool(agent.NameCheckForConflicts,
		mcp.WithDescription("Check whether a proposed time slot overlaps existing events, without changing anything."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone for interpreting dates and times (e.g. 'Europe/Berlin'). Defaults to the calendar's own time zone."),
		),
		mcp.WithString("event_date_str",
			mcp.Required(),
			mcp.Description("The proposed date in YYYY-MM-DD format."),
		),
		mcp.WithString("event_time_str",
			mcp.Required(),
			mcp.Description("The proposed start time in 24-hour HH:MM format."),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Proposed length in minutes. Defaults to 30 when omitted."),
		),
		mcp.WithString("ignore_id",
			mcp.Description("An event identifier to exclude, used when checking an event against itself."),
		),
	)

	s.AddTool(checkConflictsTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameCheckForConflicts, instrumentation.OperationCheck, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameCheckForConflicts)
		}))

	return nil
}
