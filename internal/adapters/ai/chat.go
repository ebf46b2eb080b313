package ai

import (
	"context"

	"google.golang.org/genai"
)

// ProviderName identifies a model backend.
type ProviderName string

const (
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGemini ProviderName = "gemini"
)

// String returns the provider name as a string.
func (p ProviderName) String() string {
	return string(p)
}

// ChatProvider is the contract each model backend must satisfy.
// Implementations must be safe for concurrent use.
type ChatProvider interface {
	Name() ProviderName

	// Chat sends a chat completion request and returns the model output.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model    string
	Messages []Message
	// Temperature is sent to the backend when non-nil, zero included; nil
	// leaves the backend default in place.
	Temperature *float64
	MaxTokens   int

	// ResponseSchema asks the backend for structured output matching the
	// schema. Backends without native schema support ignore it; the schema
	// validator downstream handles free-form payloads either way.
	ResponseSchema *genai.Schema
}

// Message represents a single message in the conversation.
type Message struct {
	Role    MessageRole
	Content string
}

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem MessageRole = "system"
	RoleUser   MessageRole = "user"
)

// ChatResponse represents the response from a chat completion.
type ChatResponse struct {
	ID           string
	Model        string
	Content      string
	FinishReason FinishReason
	Usage        Usage
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop   FinishReason = "stop"
	FinishReasonLength FinishReason = "length"
	FinishReasonOther  FinishReason = "other"
)

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
