// Package calendar_tools exposes the calendar tool set over MCP (Model
// Context Protocol).
//
// The same six tools the conversational agent calls internally are
// registered here for external MCP clients: listing and inspecting events,
// creating, updating, and deleting them, and checking a proposed slot for
// conflicts. Every call routes through the agent dispatcher, so argument
// validation, conflict detection, and deletion gating behave identically
// in both transports.
//
// The tools support multi-account authentication via the optional
// "account" argument.
package calendar_tools
