package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"calagent/internal/agent"
	"calagent/internal/server"
	"calagent/internal/tools/common"
)

// dispatcherForRequest resolves the calendar dispatcher for the request's
// account and timezone. Deletion approval follows the server's yolo
// setting: MCP clients have no interactive console, so without yolo every
// delete confirmation resolves to denied.
func dispatcherForRequest(sc *server.ServerContext, args map[string]interface{}, yolo bool) (*agent.Dispatcher, error) {
	account := common.GetAccountFromArgs(args)
	timezone := ""
	if tz, ok := args["timezone"].(string); ok {
		timezone = tz
	}
	return sc.DispatcherForAccount(account, timezone, &agent.StaticGate{Approve: yolo})
}

// toToolResult converts a dispatch result into an MCP tool result. The
// payload is the same JSON the conversational agent feeds back to the
// model, so MCP clients see identical tool semantics.
func toToolResult(res agent.Result) *mcp.CallToolResult {
	if res.Status == agent.StatusError {
		return mcp.NewToolResultError(res.JSON())
	}
	return mcp.NewToolResultText(res.JSON())
}

// handleDispatch routes one MCP tool call through the dispatcher. Tool
// failures come back as error results rather than Go errors so the MCP
// client sees the structured payload.
func handleDispatch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, yolo bool, name string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	d, err := dispatcherForRequest(sc, args, yolo)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toToolResult(d.Dispatch(ctx, agent.ToolCall{Name: name, Args: args})), nil
}

// RegisterCalendarTools registers all calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, yolo bool) error {
	if err := RegisterQueryTools(s, sc, yolo); err != nil {
		return fmt.Errorf("failed to register query tools: %w", err)
	}
	if err := RegisterEventTools(s, sc, yolo); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}
