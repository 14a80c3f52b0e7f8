package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatCompletionRequest represents an OpenAI-compatible chat completion request.
// This matches the OpenAI Chat Completions API format so existing OpenAI SDKs
// and tools work against the adapter unchanged.
type ChatCompletionRequest struct {
	// Model is the requested model name. It is resolved against the upstream
	// agent catalog by fuzzy name matching.
	Model string `json:"model"`

	// Messages is the conversation history as a list of messages.
	Messages []ChatMessage `json:"messages"`

	// Temperature controls randomness in the response (0.0 to 2.0).
	// Accepted for compatibility; the upstream does not expose sampling
	// controls, so the value is ignored.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	// Accepted for compatibility and ignored, like Temperature.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Stream enables server-sent events (SSE) streaming.
	// Optional, defaults to false.
	Stream bool `json:"stream,omitempty"`

	// User is a unique identifier for the end-user making the request.
	// Optional.
	User string `json:"user,omitempty"`

	// ConversationID pins the request to an existing conversation session.
	// Adapter extension; the inline conversation tag in message content is
	// the usual carrier, this field takes precedence when both are present.
	ConversationID string `json:"conversation_id,omitempty"`
}

// Validate checks that the request has the minimum required fields.
func (r *ChatCompletionRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	for i, msg := range r.Messages {
		if msg.Role == "" {
			return fmt.Errorf("messages[%d].role is required", i)
		}
	}
	return nil
}

// LastUserMessage returns the most recent message with role "user", or nil
// if the request contains none.
func (r *ChatCompletionRequest) LastUserMessage() *ChatMessage {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return &r.Messages[i]
		}
	}
	return nil
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is the author of the message ("system", "user", or "assistant").
	Role string `json:"role"`

	// Content is the message content, either a plain string or a list of
	// typed content parts for multimodal input.
	Content MessageContent `json:"content"`

	// Name is the name of the author (optional).
	Name string `json:"name,omitempty"`
}

// MessageContent is the string-or-parts union the OpenAI API allows for
// message content. Exactly one of Text and Parts is meaningful: IsParts
// reports which form was received.
type MessageContent struct {
	// Text holds the content when it was supplied as a plain string.
	Text string

	// Parts holds the content when it was supplied as an array of parts.
	Parts []ContentPart

	// isParts records which union arm is active so the value remarshals in
	// the shape it arrived in.
	isParts bool
}

// NewTextContent returns a MessageContent in string form.
func NewTextContent(text string) MessageContent {
	return MessageContent{Text: text}
}

// NewPartsContent returns a MessageContent in multi-part form.
func NewPartsContent(parts []ContentPart) MessageContent {
	return MessageContent{Parts: parts, isParts: true}
}

// IsParts reports whether the content arrived as an array of parts.
func (c MessageContent) IsParts() bool {
	return c.isParts
}

// PlainText returns the textual content: the string itself for string form,
// or all text parts joined with newlines for multi-part form.
func (c MessageContent) PlainText() string {
	if !c.isParts {
		return c.Text
	}
	var texts []string
	for _, p := range c.Parts {
		if p.Type == ContentPartText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ImageURLs returns the URLs of all image parts, in order. String-form
// content has none.
func (c MessageContent) ImageURLs() []string {
	if !c.isParts {
		return nil
	}
	var urls []string
	for _, p := range c.Parts {
		if p.Type == ContentPartImageURL && p.ImageURL != nil && p.ImageURL.URL != "" {
			urls = append(urls, p.ImageURL.URL)
		}
	}
	return urls
}

// UnmarshalJSON accepts either a JSON string or an array of content parts.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Parts = nil
		c.isParts = false
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		c.Text = ""
		c.Parts = parts
		c.isParts = true
		return nil
	}

	return fmt.Errorf("content must be a string or an array of content parts")
}

// MarshalJSON emits the form the content was constructed in.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.isParts {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// Content part types.
const (
	ContentPartText     = "text"
	ContentPartImageURL = "image_url"
)

// ContentPart is a single element of multi-part message content.
type ContentPart struct {
	// Type is "text" or "image_url".
	Type string `json:"type"`

	// Text is the text content for text parts.
	Text string `json:"text,omitempty"`

	// ImageURL carries the image reference for image_url parts.
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL holds an image reference inside an image_url content part.
// The URL may be an https URL or a data URI with base64 payload.
type ImageURL struct {
	URL string `json:"url"`

	// Detail is the OpenAI detail hint ("low", "high", "auto").
	// Accepted for compatibility and ignored.
	Detail string `json:"detail,omitempty"`
}
