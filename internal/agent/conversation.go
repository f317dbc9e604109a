package agent

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-requested invocation of one of the calendar tools.
// The ID is an opaque identifier assigned by the model (or generated when
// the model omits one); the matching tool result message references it.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Message is one entry in a conversation. Assistant messages may carry
// tool calls; tool messages answer a prior call identified by ToolCallID.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set only on assistant messages.
	ToolCalls []ToolCall

	// ToolCallID and ToolName are set only on tool result messages.
	ToolCallID string
	ToolName   string
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ToolResultMessage creates a tool result message answering the given call.
// Content carries the JSON-encoded tool result.
func ToolResultMessage(call ToolCall, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}
}

// unansweredCalls returns the tool calls in the conversation that have no
// matching tool result message yet. A well-formed conversation has none
// before the next model invocation.
func unansweredCalls(messages []Message) []ToolCall {
	answered := make(map[string]bool)
	for _, m := range messages {
		if m.Role == RoleTool && m.ToolCallID != "" {
			answered[m.ToolCallID] = true
		}
	}

	var pending []ToolCall
	for _, m := range messages {
		if m.Role != RoleAssistant {
			continue
		}
		for _, call := range m.ToolCalls {
			if !answered[call.ID] {
				pending = append(pending, call)
			}
		}
	}
	return pending
}
