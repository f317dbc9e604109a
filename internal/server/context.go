package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"calagent/internal/agent"
	"calagent/internal/calendar"
	"calagent/internal/google"
	"calagent/internal/instrumentation"
)

// ServerContext holds the shared state for the assistant's transports.
// It caches one calendar client per account and builds per-request
// dispatchers and orchestrators on top of them.
type ServerContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	model           agent.Model
	gate            *agent.ApprovalGate
	sessions        *SessionManager
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	audit           *instrumentation.AuditLogger
	maxIterations   int
	mu              sync.RWMutex
	shutdown        bool
}

// NewServerContext creates a new server context around the given model.
func NewServerContext(ctx context.Context, model agent.Model, logger *slog.Logger) (*ServerContext, error) {
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	// Initialize client map
	calendarClients := make(map[string]*calendar.Client)

	// Try to create default Calendar client, but don't fail if token is missing
	// Clients will be lazily initialized when first needed
	if calendar.HasToken() {
		client, err := calendar.NewClient(shutdownCtx)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			logger.Warn("failed to create Calendar client for default account", "error", err)
		} else {
			calendarClients["default"] = client
		}
	}

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		calendarClients: calendarClients,
		model:           model,
		gate:            agent.NewApprovalGate(),
		sessions:        NewSessionManagerWithLogger(DefaultSessionTimeout, logger, nil),
		logger:          logger,
		shutdown:        false,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Model returns the model the server drives.
func (sc *ServerContext) Model() agent.Model {
	return sc.model
}

// Gate returns the approval gate used to resolve delete confirmations
// arriving out of band over HTTP.
func (sc *ServerContext) Gate() *agent.ApprovalGate {
	return sc.gate
}

// Sessions returns the chat session manager.
func (sc *ServerContext) Sessions() *SessionManager {
	return sc.sessions
}

// CalendarClientForAccount returns the Calendar client for a specific account.
// Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !calendar.HasTokenForAccount(account) {
		return nil
	}

	client, err := calendar.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create Calendar client", "account", account, "error", err)
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account.
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the Calendar client for a specific account.
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SetCalendarClient sets the Calendar client for the default account.
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

// SetMetrics attaches a metrics recorder. Pass nil to disable recording.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.sessions.metrics = metrics
}

// Metrics returns the attached metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger attaches an audit logger for calendar mutations.
func (sc *ServerContext) SetAuditLogger(audit *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = audit
}

// AuditLogger returns the attached audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// DispatcherForAccount builds a tool dispatcher bound to the account's
// calendar with the given confirmation gate. A nil gate uses the
// server's approval gate. An empty timezone name falls back to the
// calendar's own setting, then to the local zone.
func (sc *ServerContext) DispatcherForAccount(account, timezone string, gate agent.ConfirmationGate) (*agent.Dispatcher, error) {
	client := sc.CalendarClientForAccount(account)
	if client == nil {
		return nil, errors.New(google.GetAuthenticationErrorMessage(account))
	}

	loc, err := sc.resolveTimezone(client, timezone)
	if err != nil {
		return nil, err
	}

	if gate == nil {
		gate = sc.gate
	}
	return agent.NewDispatcher(client, gate, loc, sc.logger, sc.Metrics()), nil
}

// OrchestratorForAccount builds an orchestrator bound to the account's
// calendar and the given timezone.
func (sc *ServerContext) OrchestratorForAccount(account, timezone string) (*agent.Orchestrator, error) {
	dispatcher, err := sc.DispatcherForAccount(account, timezone, nil)
	if err != nil {
		return nil, err
	}
	orchestrator := agent.NewOrchestrator(sc.model, dispatcher, sc.logger)

	sc.mu.RLock()
	maxIterations := sc.maxIterations
	sc.mu.RUnlock()
	if maxIterations > 0 {
		orchestrator.SetMaxIterations(maxIterations)
	}
	return orchestrator, nil
}

// SetMaxIterations overrides the iteration budget for orchestrators
// built by this context. Zero keeps the default.
func (sc *ServerContext) SetMaxIterations(n int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.maxIterations = n
}

// resolveTimezone loads the named zone, falling back to the calendar's
// configured timezone and finally to the local zone.
func (sc *ServerContext) resolveTimezone(client *calendar.Client, timezone string) (*time.Location, error) {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
		return loc, nil
	}

	if name, err := client.Timezone(); err == nil && name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc, nil
		}
	}

	return time.Local, nil
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.sessions.Stop()
	sc.cancel()
	return nil
}
