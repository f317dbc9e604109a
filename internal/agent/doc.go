// Package agent implements the calendar assistant's orchestration core:
// a bounded tool-calling loop that interleaves model replies with tool
// invocations against the calendar.
//
// The Orchestrator owns one conversation per run and talks to two
// collaborators through narrow contracts: a Model that returns either
// tool calls or a final answer, and a CalendarAPI the Dispatcher executes
// tool calls against. Tool failures are structured results the model can
// react to, never Go errors; deletes pass through a ConfirmationGate
// before they reach the backend.
package agent
