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

// RegisterEventTools registers the event mutation tools with the MCP server.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, yolo bool) error {
	createEventTool := mcp.NewTool(agent.NameCreateEvent,
		mcp.WithDescription("Create a new calendar event. Fails with a conflict error if the slot overlaps existing events, unless force_ignore_conflict is set."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone for interpreting dates and times (e.g. 'Europe/Berlin'). Defaults to the calendar's own time zone."),
		),
		mcp.WithString("event_title",
			mcp.Required(),
			mcp.Description("The event title."),
		),
		mcp.WithString("event_date_str",
			mcp.Required(),
			mcp.Description("The event date in YYYY-MM-DD format."),
		),
		mcp.WithString("event_time_str",
			mcp.Required(),
			mcp.Description("The event start time in 24-hour HH:MM format."),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Event length in minutes. Defaults to 30 when omitted."),
		),
		mcp.WithBoolean("force_ignore_conflict",
			mcp.Description("Create the event even if it conflicts with existing events."),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameCreateEvent, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameCreateEvent)
		}))

	updateEventTool := mcp.NewTool(agent.NameUpdateEvent,
		mcp.WithDescription("Update an existing event. Only supplied fields change; changing only the time keeps the event's current length."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone for interpreting dates and times (e.g. 'Europe/Berlin'). Defaults to the calendar's own time zone."),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The ID of the event to update."),
		),
		mcp.WithString("new_title",
			mcp.Description("A new title for the event."),
		),
		mcp.WithString("new_date_str",
			mcp.Description("A new date for the event in YYYY-MM-DD format."),
		),
		mcp.WithString("new_time_str",
			mcp.Description("A new start time for the event in 24-hour HH:MM format."),
		),
		mcp.WithNumber("new_duration_minutes",
			mcp.Description("A new length in minutes. When omitted the event keeps its current length."),
		),
		mcp.WithBoolean("force_ignore_conflict",
			mcp.Description("Apply the update even if the new slot conflicts with existing events."),
		),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameUpdateEvent, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameUpdateEvent)
		}))

	deleteEventTool := mcp.NewTool(agent.NameDeleteEvent,
		mcp.WithDescription("Delete a calendar event. Requires the server to run with --yolo; otherwise the deletion is canceled because no one can confirm it."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The ID of the event to delete."),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithOperation(
		agent.NameDeleteEvent, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDispatch(ctx, request, sc, yolo, agent.NameDeleteEvent)
		}))

	return nil
}
