// Package llm provides the language-model collaborator backed by the
// Gemini API. It converts between the agent's conversation model and
// Gemini contents, declares the calendar tool schema for function
// calling, and parses the model's structured final answer.
package llm
