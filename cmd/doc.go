// Package cmd implements the command-line interface for calagent.
//
// This package provides the following commands:
//   - chat: Interactive chat session with the calendar assistant (default)
//   - serve: Start the HTTP chat API or the MCP server
//   - auth: Authorize access to a Google Calendar account
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
