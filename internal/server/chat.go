package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"calagent/internal/agent"
	"calagent/internal/instrumentation"
)

// ChatRequest is the body of a POST /chat request. SessionID resumes an
// existing conversation; when absent a new session is created. Account
// and Timezone are only honored at session creation.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Account   string `json:"account,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// ChatResponse is the body of a POST /chat response.
type ChatResponse struct {
	Response  string        `json:"response"`
	SessionID string        `json:"session_id"`
	Answer    *agent.Answer `json:"answer,omitempty"`
	Exhausted bool          `json:"exhausted,omitempty"`
}

// ConfirmRequest resolves a pending delete confirmation.
type ConfirmRequest struct {
	EventID string `json:"event_id"`
	Approve bool   `json:"approve"`
}

// ConfirmResponse reports whether a waiting deletion was resolved.
type ConfirmResponse struct {
	Resolved bool `json:"resolved"`
}

// PendingResponse lists event IDs awaiting a delete confirmation.
type PendingResponse struct {
	EventIDs []string `json:"event_ids"`
}

// ErrorResponse is the JSON error body for all chat endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatHandler serves the HTTP chat transport: a /chat endpoint driving
// the agent loop and a /confirm endpoint resolving delete confirmations
// that the loop parked on the approval gate.
type ChatHandler struct {
	sc *ServerContext
}

// NewChatHandler creates a ChatHandler bound to the server context.
func NewChatHandler(sc *ServerContext) *ChatHandler {
	return &ChatHandler{sc: sc}
}

// RegisterChatEndpoints registers the chat endpoints on the given mux.
func (h *ChatHandler) RegisterChatEndpoints(mux *http.ServeMux) {
	mux.Handle("/chat", h.chatHandler())
	mux.Handle("/confirm", h.confirmHandler())
	mux.Handle("/confirm/pending", h.pendingHandler())
}

func (h *ChatHandler) chatHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := h.serveChat(w, r)
		if m := h.sc.Metrics(); m != nil {
			m.RecordHTTPRequest(r.Context(), r.Method, "/chat", status, time.Since(start))
		}
	})
}

// serveChat handles one chat turn and returns the HTTP status written.
func (h *ChatHandler) serveChat(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodPost {
		return writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid JSON body")
	}
	if req.Message == "" {
		return writeError(w, http.StatusBadRequest, "message is required")
	}

	session, errStatus := h.resolveSession(&req)
	if errStatus != 0 {
		if errStatus == http.StatusNotFound {
			return writeError(w, errStatus, "unknown session ID")
		}
		return writeError(w, errStatus, "could not resolve session")
	}

	orchestrator, err := h.sc.OrchestratorForAccount(session.Account, session.Timezone)
	if err != nil {
		return writeError(w, http.StatusServiceUnavailable, err.Error())
	}

	// One run at a time per session, history read included.
	session.LockRun()
	defer session.UnlockRun()

	outcome, err := orchestrator.Run(r.Context(), session.History, req.Message)
	if err != nil {
		h.sc.Logger().Error("chat run failed", "session", session.ID, "error", err)
		if m := h.sc.Metrics(); m != nil {
			m.RecordRun(r.Context(), instrumentation.RunOutcomeFailed, 0)
		}
		return writeError(w, http.StatusBadGateway, "assistant is unavailable, try again")
	}

	h.sc.Sessions().UpdateHistory(session.ID, outcome.Conversation)

	if m := h.sc.Metrics(); m != nil {
		result := instrumentation.RunOutcomeAnswered
		if outcome.Exhausted {
			result = instrumentation.RunOutcomeExhausted
		}
		m.RecordRun(r.Context(), result, outcome.Iterations)
	}

	return writeJSON(w, http.StatusOK, ChatResponse{
		Response:  outcome.Text,
		SessionID: session.ID,
		Answer:    outcome.Answer,
		Exhausted: outcome.Exhausted,
	})
}

// resolveSession finds or creates the chat session for a request. A
// non-zero return status indicates a client error.
func (h *ChatHandler) resolveSession(req *ChatRequest) (*ChatSession, int) {
	if req.SessionID == "" {
		account := req.Account
		if account == "" {
			account = "default"
		}
		return h.sc.Sessions().Create(account, req.Timezone), 0
	}

	session, err := h.sc.Sessions().Get(req.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, http.StatusNotFound
		}
		return nil, http.StatusInternalServerError
	}
	return session, 0
}

func (h *ChatHandler) confirmHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := h.serveConfirm(w, r)
		if m := h.sc.Metrics(); m != nil {
			m.RecordHTTPRequest(r.Context(), r.Method, "/confirm", status, time.Since(start))
		}
	})
}

func (h *ChatHandler) serveConfirm(w http.ResponseWriter, r *http.Request) int {
	if r.Method != http.MethodPost {
		return writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return writeError(w, http.StatusBadRequest, "invalid JSON body")
	}
	if req.EventID == "" {
		return writeError(w, http.StatusBadRequest, "event_id is required")
	}

	resolved := h.sc.Gate().Resolve(req.EventID, req.Approve)
	if resolved {
		if m := h.sc.Metrics(); m != nil {
			decision := instrumentation.ConfirmationDenied
			if req.Approve {
				decision = instrumentation.ConfirmationApproved
			}
			m.RecordConfirmation(r.Context(), decision)
		}
	}

	return writeJSON(w, http.StatusOK, ConfirmResponse{Resolved: resolved})
}

func (h *ChatHandler) pendingHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		pending := h.sc.Gate().Pending()
		if pending == nil {
			pending = []string{}
		}
		writeJSON(w, http.StatusOK, PendingResponse{EventIDs: pending})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
	return status
}

func writeError(w http.ResponseWriter, status int, message string) int {
	return writeJSON(w, status, ErrorResponse{Error: message})
}
