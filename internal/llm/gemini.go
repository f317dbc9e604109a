package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"calagent/internal/agent"
	"calagent/internal/instrumentation"
	"calagent/internal/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds the Gemini client settings.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string

	// Model is the model name; DefaultModel when empty.
	Model string
}

// Gemini implements agent.Model on top of the Gemini API with function
// calling for the calendar tools.
type Gemini struct {
	client  *genai.Client
	model   string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewGemini creates a Gemini-backed model collaborator. A nil metrics
// recorder disables metric reporting.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   model,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Generate sends the conversation with the calendar tool schema and
// returns the model's next turn.
func (g *Gemini) Generate(ctx context.Context, messages []agent.Message) (*agent.ModelReply, error) {
	system, contents := toContents(messages)

	config := &genai.GenerateContentConfig{
		Tools: toolSchema(),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	elapsed := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	g.logger.Debug("model round trip",
		slog.String("model", g.model),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, elapsed))
	if g.metrics != nil {
		g.metrics.RecordModelRoundTrip(ctx, g.model, status, elapsed)
	}

	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}
	return fromResponse(resp)
}

// toContents converts the conversation into Gemini contents, separating
// out the system instruction. Tool results travel back as function
// response parts in a user turn, which is how the Gemini API expects
// them.
func toContents(messages []agent.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case agent.RoleSystem:
			system = append(system, m.Content)

		case agent.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))

		case agent.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Args,
					},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case agent.RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       m.ToolCallID,
						Name:     m.ToolName,
						Response: toResponseMap(m.Content),
					},
				}},
			})
		}
	}

	return strings.Join(system, "\n\n"), contents
}

// toResponseMap decodes a JSON tool result into the map shape the
// function response part requires. Non-JSON content is wrapped.
func toResponseMap(content string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(content), &m); err == nil {
		return m
	}
	return map[string]any{"output": content}
}

// fromResponse interprets the model's reply as either a tool-call batch
// or a final answer. Calls without an ID get a generated one so the
// matching tool result can reference them.
func fromResponse(resp *genai.GenerateContentResponse) (*agent.ModelReply, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("Gemini returned no candidates")
	}

	var texts []string
	var calls []agent.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			calls = append(calls, agent.ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}

	text := strings.Join(texts, "")
	reply := &agent.ModelReply{
		Message: agent.Message{
			Role:      agent.RoleAssistant,
			Content:   text,
			ToolCalls: calls,
		},
	}
	if len(calls) == 0 {
		reply.Answer = parseAnswer(text)
	}
	return reply, nil
}

// parseAnswer extracts the structured final answer from the model's text,
// tolerating a markdown code fence around the JSON. A reply that is not
// the answer shape yields nil; the caller falls back to the raw text.
func parseAnswer(text string) *agent.Answer {
	trimmed := strings.TrimSpace(text)
	if fenced, ok := strings.CutPrefix(trimmed, "```json"); ok {
		trimmed = fenced
	} else if fenced, ok := strings.CutPrefix(trimmed, "```"); ok {
		trimmed = fenced
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	var answer agent.Answer
	if err := json.Unmarshal([]byte(trimmed), &answer); err != nil {
		return nil
	}
	if answer.Description == "" {
		return nil
	}
	return &answer
}
