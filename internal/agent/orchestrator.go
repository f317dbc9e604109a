package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"calagent/internal/logging"
)

// DefaultMaxIterations bounds the model round trips in a single run.
const DefaultMaxIterations = 5

// ExhaustedMessage is the fixed outcome text when a run hits its iteration
// budget without a final answer. Callers must treat it distinctly from a
// successful answer.
const ExhaustedMessage = "Max iterations reached without a final answer."

// runState is the orchestrator's position in one run. AwaitingModelReply
// is initial; Done and Exhausted are terminal; the only cycle is
// AwaitingModelReply and DispatchingTools alternating, bounded by the
// iteration budget.
type runState int

const (
	stateAwaitingModelReply runState = iota
	stateDispatchingTools
	stateDone
	stateExhausted
)

func (s runState) String() string {
	switch s {
	case stateAwaitingModelReply:
		return "awaiting_model_reply"
	case stateDispatchingTools:
		return "dispatching_tools"
	case stateDone:
		return "done"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one orchestration run. Exactly one of Answer
// and Exhausted describes how the run ended; Conversation carries the full
// message history for callers that persist it across turns.
type Outcome struct {
	// Answer is the model's final answer; nil when the run exhausted its
	// iteration budget.
	Answer *Answer

	// Text is the natural-language reply for the user: the answer's
	// description, or ExhaustedMessage.
	Text string

	// Exhausted is set when the iteration budget ran out before a final
	// answer.
	Exhausted bool

	// Iterations is the number of model round trips the run consumed.
	Iterations int

	Conversation []Message
}

// Orchestrator drives the bounded tool-calling loop: it sends the
// conversation to the model, routes requested tool calls through the
// dispatcher, and stops on a final answer or when the iteration budget is
// spent. Each run owns its conversation exclusively; the orchestrator
// keeps no state across runs.
type Orchestrator struct {
	model         Model
	dispatcher    *Dispatcher
	maxIterations int
	logger        *slog.Logger

	// now is replaceable in tests to pin the system prompt's date.
	now func() time.Time
}

// NewOrchestrator creates an orchestrator with the default iteration
// budget.
func NewOrchestrator(model Model, dispatcher *Dispatcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		model:         model,
		dispatcher:    dispatcher,
		maxIterations: DefaultMaxIterations,
		logger:        logger,
		now:           time.Now,
	}
}

// SetMaxIterations overrides the iteration budget. Values below one keep
// the default.
func (o *Orchestrator) SetMaxIterations(n int) {
	if n >= 1 {
		o.maxIterations = n
	}
}

// Run executes one user turn. History carries prior conversation messages,
// if any; the system message is regenerated on every run so a long-lived
// conversation always sees the current date. The returned error covers
// only model-collaborator failures (tool failures flow back to the model
// as structured results and never abort the run).
func (o *Orchestrator) Run(ctx context.Context, history []Message, userText string) (*Outcome, error) {
	if len(history) > 0 && history[0].Role == RoleSystem {
		history = history[1:]
	}
	conversation := make([]Message, 0, len(history)+2)
	conversation = append(conversation, SystemMessage(o.systemPrompt()))
	conversation = append(conversation, history...)
	conversation = append(conversation, UserMessage(userText))

	state := stateAwaitingModelReply
	for iteration := 1; iteration <= o.maxIterations; iteration++ {
		o.logger.Debug("orchestrator state",
			slog.String("state", state.String()),
			slog.Int("iteration", iteration))

		if pending := unansweredCalls(conversation); len(pending) > 0 {
			return nil, fmt.Errorf("conversation has %d unanswered tool calls", len(pending))
		}

		reply, err := o.model.Generate(ctx, conversation)
		if err != nil {
			return nil, fmt.Errorf("model request failed: %w", err)
		}
		conversation = append(conversation, reply.Message)

		if len(reply.Message.ToolCalls) == 0 {
			state = stateDone
			answer := reply.Answer
			if answer == nil {
				answer = &Answer{Description: reply.Message.Content}
			}
			o.logger.Info("run completed",
				logging.Status(logging.StatusSuccess),
				slog.Int("iterations", iteration))
			return &Outcome{
				Answer:       answer,
				Text:         answer.Description,
				Iterations:   iteration,
				Conversation: conversation,
			}, nil
		}

		state = stateDispatchingTools
		// Sequential, in emission order: later calls in the batch may
		// depend on state mutated or fetched by earlier ones.
		for _, call := range reply.Message.ToolCalls {
			res := o.dispatcher.Dispatch(ctx, call)
			conversation = append(conversation, ToolResultMessage(call, res.JSON()))
		}
		state = stateAwaitingModelReply
	}

	state = stateExhausted
	o.logger.Warn("run exhausted iteration budget",
		slog.String("state", state.String()),
		slog.Int("max_iterations", o.maxIterations))
	return &Outcome{
		Text:         ExhaustedMessage,
		Exhausted:    true,
		Iterations:   o.maxIterations,
		Conversation: conversation,
	}, nil
}

// systemPrompt builds the instructions seeding every conversation,
// embedding the current date and the operating timezone.
func (o *Orchestrator) systemPrompt() string {
	tz := o.dispatcher.Timezone()
	today := o.now().In(tz).Format(DateLayout)
	return fmt.Sprintf(`You are a helpful calendar assistant. Today's date is %s. The user's timezone is %s.

Rules you must always follow:
- When the user asks about a day, search the entire day from 00:00:00 to 23:59:59.
- Never invent events. Only report events the calendar tools returned.
- Never create, update or delete events on dates or times the user has not discussed with you.
- When a tool reports a conflict, tell the user about the conflicting events and ask how to proceed; only retry with force_ignore_conflict after the user explicitly agrees.

When you have everything you need, reply with a single JSON object:
{"date": "YYYY-MM-DD", "time": "HH:MM", "events_description": "<your answer for the user>"}
Use empty strings for date or time when they do not apply.`, today, tz.String())
}
