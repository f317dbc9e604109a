package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"calagent/internal/calendar"
)

// DefaultConfirmTimeout bounds how long an asynchronous confirmation may
// stay unanswered before it counts as denied.
const DefaultConfirmTimeout = 2 * time.Minute

// ConfirmationGate is the human-approval checkpoint interposed before a
// delete executes. A false return short-circuits the delete without
// contacting the calendar backend.
type ConfirmationGate interface {
	Confirm(ctx context.Context, event calendar.Event) bool
}

// ConsoleGate prompts for approval on an interactive terminal. It blocks
// until a line is read; anything other than "y"/"yes" is a denial.
type ConsoleGate struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints the prompt and reads one line from In.
func (g *ConsoleGate) Confirm(ctx context.Context, event calendar.Event) bool {
	fmt.Fprintf(g.Out, "Delete event %q (%s)? [y/N]: ",
		event.Summary, event.Start.Format("2006-01-02 15:04"))

	reader := bufio.NewReader(g.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ApprovalGate parks confirmations until a second party resolves them,
// keyed by event ID. It backs hosts with no interactive console, such as
// the HTTP server, where approvals arrive on a separate request. An
// unresolved confirmation counts as denied after Timeout.
type ApprovalGate struct {
	// Timeout bounds how long Confirm waits; zero means
	// DefaultConfirmTimeout.
	Timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan bool
}

// NewApprovalGate creates a gate with the default timeout.
func NewApprovalGate() *ApprovalGate {
	return &ApprovalGate{pending: make(map[string]chan bool)}
}

// Confirm registers a pending confirmation for the event and blocks until
// Resolve is called for it, the timeout elapses, or ctx is done. Timeout
// and cancellation are denials.
func (g *ApprovalGate) Confirm(ctx context.Context, event calendar.Event) bool {
	ch := make(chan bool, 1)

	g.mu.Lock()
	if g.pending == nil {
		g.pending = make(map[string]chan bool)
	}
	g.pending[event.ID] = ch
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, event.ID)
		g.mu.Unlock()
	}()

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case approved := <-ch:
		return approved
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Resolve answers the pending confirmation for the given event ID. It
// reports whether a confirmation was actually waiting.
func (g *ApprovalGate) Resolve(eventID string, approve bool) bool {
	g.mu.Lock()
	ch, ok := g.pending[eventID]
	if ok {
		delete(g.pending, eventID)
	}
	g.mu.Unlock()

	if !ok {
		return false
	}
	ch <- approve
	return true
}

// Pending returns the event IDs with unresolved confirmations.
func (g *ApprovalGate) Pending() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, len(g.pending))
	for id := range g.pending {
		ids = append(ids, id)
	}
	return ids
}

// StaticGate answers every confirmation with a fixed decision. The MCP
// host uses it: denied by default, approved when auto-approve is enabled.
type StaticGate struct {
	Approve bool
}

// Confirm returns the fixed decision.
func (g *StaticGate) Confirm(ctx context.Context, event calendar.Event) bool {
	return g.Approve
}
