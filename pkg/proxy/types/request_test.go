package types

import (
	"encoding/json"
	"testing"
)

func TestChatCompletionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request ChatCompletionRequest
		wantErr bool
	}{
		{
			name: "valid",
			request: ChatCompletionRequest{
				Model:    "GhostWriter",
				Messages: []ChatMessage{{Role: "user", Content: NewTextContent("hello")}},
			},
		},
		{
			name: "missing_model",
			request: ChatCompletionRequest{
				Messages: []ChatMessage{{Role: "user", Content: NewTextContent("hello")}},
			},
			wantErr: true,
		},
		{
			name: "whitespace_model",
			request: ChatCompletionRequest{
				Model:    "   ",
				Messages: []ChatMessage{{Role: "user", Content: NewTextContent("hello")}},
			},
			wantErr: true,
		},
		{
			name:    "empty_messages",
			request: ChatCompletionRequest{Model: "GhostWriter"},
			wantErr: true,
		},
		{
			name: "message_without_role",
			request: ChatCompletionRequest{
				Model:    "GhostWriter",
				Messages: []ChatMessage{{Content: NewTextContent("hello")}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChatCompletionRequest_LastUserMessage(t *testing.T) {
	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: NewTextContent("be brief")},
			{Role: "user", Content: NewTextContent("first")},
			{Role: "assistant", Content: NewTextContent("reply")},
			{Role: "user", Content: NewTextContent("second")},
		},
	}

	msg := req.LastUserMessage()
	if msg == nil {
		t.Fatal("expected a user message, got nil")
	}
	if msg.Content.PlainText() != "second" {
		t.Errorf("expected last user message, got %q", msg.Content.PlainText())
	}

	empty := ChatCompletionRequest{
		Messages: []ChatMessage{{Role: "assistant", Content: NewTextContent("reply")}},
	}
	if empty.LastUserMessage() != nil {
		t.Error("expected nil when no user messages present")
	}
}

func TestMessageContent_UnmarshalString(t *testing.T) {
	var msg ChatMessage
	if err := json.Unmarshal([]byte(`{"role":"user","content":"hello world"}`), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if msg.Content.IsParts() {
		t.Error("expected string form")
	}
	if msg.Content.PlainText() != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", msg.Content.PlainText())
	}

	out, err := json.Marshal(msg.Content)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"hello world"` {
		t.Errorf("expected string remarshal, got %s", out)
	}
}

func TestMessageContent_UnmarshalParts(t *testing.T) {
	raw := `{"role":"user","content":[
		{"type":"text","text":"describe this"},
		{"type":"image_url","image_url":{"url":"https://example.com/a.png"}},
		{"type":"text","text":"in detail"}
	]}`

	var msg ChatMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !msg.Content.IsParts() {
		t.Fatal("expected parts form")
	}
	if got := msg.Content.PlainText(); got != "describe this\nin detail" {
		t.Errorf("unexpected joined text: %q", got)
	}

	urls := msg.Content.ImageURLs()
	if len(urls) != 1 || urls[0] != "https://example.com/a.png" {
		t.Errorf("unexpected image URLs: %v", urls)
	}
}

func TestMessageContent_UnmarshalInvalid(t *testing.T) {
	var content MessageContent
	if err := json.Unmarshal([]byte(`42`), &content); err == nil {
		t.Fatal("expected error for numeric content, got nil")
	}
}

func TestErrorDetail_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		errType string
		want    int
	}{
		{ErrorTypeInvalidRequest, 400},
		{ErrorTypeAuthentication, 401},
		{ErrorTypeNotFound, 404},
		{ErrorTypeRateLimitExceeded, 429},
		{ErrorTypeServerError, 500},
		{ErrorTypeBadGateway, 502},
		{ErrorTypeGatewayTimeout, 504},
		{"unknown", 500},
	}

	for _, tt := range tests {
		detail := ErrorDetail{Type: tt.errType}
		if got := detail.HTTPStatusCode(); got != tt.want {
			t.Errorf("HTTPStatusCode(%q) = %d, want %d", tt.errType, got, tt.want)
		}
	}
}
