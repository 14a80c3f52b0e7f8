package types

import "encoding/json"

// Object type values on completion responses.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
	ObjectModel               = "model"
	ObjectList                = "list"
)

// FinishReasonStop is the finish reason for a normally completed reply.
const FinishReasonStop = "stop"

// ChatCompletionResponse represents an OpenAI-compatible chat completion
// response, returned for non-streaming requests.
type ChatCompletionResponse struct {
	// ID is a unique identifier for the chat completion.
	ID string `json:"id"`

	// Object is always "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp (seconds) of when the completion was created.
	Created int64 `json:"created"`

	// Model is the model name echoed from the request.
	Model string `json:"model"`

	// Choices is a list of completion choices (always exactly one).
	Choices []Choice `json:"choices"`

	// Usage contains token usage statistics. The upstream reports no real
	// counts, so the values are word-count estimates.
	Usage Usage `json:"usage"`

	// ConversationID identifies the upstream conversation this reply belongs
	// to. Adapter extension.
	ConversationID string `json:"conversation_id,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of this choice in the list of choices.
	Index int `json:"index"`

	// Message is the generated message.
	Message AssistantMessage `json:"message"`

	// FinishReason explains why generation stopped. Always "stop".
	FinishReason string `json:"finish_reason"`
}

// AssistantMessage is the assistant reply inside a completion choice.
type AssistantMessage struct {
	// Role is always "assistant".
	Role string `json:"role"`

	// Content is the full reply text, including any rendered media and the
	// appended conversation tag.
	Content string `json:"content"`

	// SaResources carries the upstream's raw media resource payloads
	// verbatim, for clients that want more than the rendered markdown.
	SaResources []json.RawMessage `json:"sa_resources,omitempty"`
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionStreamChunk represents a chunk in a streaming response,
// sent as Server-Sent Events (SSE) when stream=true.
type ChatCompletionStreamChunk struct {
	// ID is a unique identifier shared by all chunks of one completion.
	ID string `json:"id"`

	// Object is always "chat.completion.chunk".
	Object string `json:"object"`

	// Created is the Unix timestamp (seconds) of when the chunk was created.
	Created int64 `json:"created"`

	// Model is the model name echoed from the request.
	Model string `json:"model"`

	// Choices is a list of streaming choices (always exactly one).
	Choices []StreamChoice `json:"choices"`

	// ConversationID identifies the upstream conversation. Set on the
	// first chunk of a stream. Adapter extension.
	ConversationID string `json:"conversation_id,omitempty"`
}

// StreamChoice represents a single choice in a streaming response.
type StreamChoice struct {
	// Index is the index of this choice in the list of choices.
	Index int `json:"index"`

	// Delta contains incremental content.
	Delta Delta `json:"delta"`

	// FinishReason explains why generation stopped.
	// Only present in the final chunk.
	FinishReason *string `json:"finish_reason"`
}

// Delta contains incremental content in a streaming response.
type Delta struct {
	// Role is the role of the message author (only in the first chunk).
	Role string `json:"role,omitempty"`

	// Content is the incremental text content.
	Content string `json:"content,omitempty"`
}

// ModelInfo describes a single model in the /v1/models listing.
type ModelInfo struct {
	// ID is the model name clients pass as "model".
	ID string `json:"id"`

	// Object is always "model".
	Object string `json:"object"`

	// Created is a fixed Unix timestamp; the upstream catalog carries no
	// creation times.
	Created int64 `json:"created"`

	// OwnedBy identifies the upstream operator.
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse is the OpenAI-compatible /v1/models listing.
type ModelsResponse struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data is the list of available models.
	Data []ModelInfo `json:"data"`
}
