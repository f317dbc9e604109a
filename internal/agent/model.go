package agent

import "context"

// Answer is the model's structured final answer.
type Answer struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"events_description"`
}

// ModelReply is one model turn: an assistant message that either carries
// tool calls or is the final answer. Answer is non-nil only when the
// message carries no tool calls and the model produced the structured
// answer shape; a plain-text reply without tool calls is still final,
// with Answer left nil.
type ModelReply struct {
	Message Message
	Answer  *Answer
}

// Model is the language-model collaborator contract. Implementations send
// the conversation with the fixed tool schema and return the model's next
// turn.
type Model interface {
	Generate(ctx context.Context, messages []Message) (*ModelReply, error)
}
