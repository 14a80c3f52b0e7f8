package conversation

import (
	"testing"

	"kiira-hq/triton/pkg/proxy/types"
)

func TestExtractFirst_NoTag(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent("hello there")},
	}

	id, cleaned := ExtractFirst(messages)
	if id != "" {
		t.Errorf("expected no id, got %q", id)
	}
	if cleaned[0].Content.PlainText() != "hello there" {
		t.Errorf("content must be unchanged, got %q", cleaned[0].Content.PlainText())
	}
}

func TestExtractFirst_RoundTrip(t *testing.T) {
	id := "abc-123"
	original := "tell me more"

	injected := InjectText(original, id)
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent(injected)},
	}

	gotID, cleaned := ExtractFirst(messages)
	if gotID != id {
		t.Errorf("expected id %q, got %q", id, gotID)
	}
	if got := cleaned[0].Content.PlainText(); got != original {
		t.Errorf("expected cleaned text %q, got %q", original, got)
	}
}

func TestExtractFirst_FirstTagWins(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent("hi [CONVERSATION_ID:first]")},
		{Role: "assistant", Content: types.NewTextContent("sure [CONVERSATION_ID:second]")},
		{Role: "user", Content: types.NewTextContent("[CONVERSATION_ID:third] go on")},
	}

	id, cleaned := ExtractFirst(messages)
	if id != "first" {
		t.Errorf("expected first id captured, got %q", id)
	}
	for i, msg := range cleaned {
		if tagPattern.MatchString(msg.Content.PlainText()) {
			t.Errorf("message %d still carries a tag: %q", i, msg.Content.PlainText())
		}
	}
	if cleaned[2].Content.PlainText() != "go on" {
		t.Errorf("later tags must be stripped, got %q", cleaned[2].Content.PlainText())
	}
}

func TestExtractFirst_CaseInsensitive(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent("hi [conversation_id:abc]")},
	}

	id, _ := ExtractFirst(messages)
	if id != "abc" {
		t.Errorf("expected case-insensitive match, got %q", id)
	}
}

func TestExtractFirst_MidTextTag(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent("before [CONVERSATION_ID:x1] after")},
	}

	id, cleaned := ExtractFirst(messages)
	if id != "x1" {
		t.Errorf("expected id x1, got %q", id)
	}
	if got := cleaned[0].Content.PlainText(); got != "before  after" {
		t.Errorf("surrounding text must be preserved, got %q", got)
	}
}

func TestExtractFirst_MultiPartContent(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewPartsContent([]types.ContentPart{
			{Type: types.ContentPartText, Text: "describe this"},
			{Type: types.ContentPartImageURL, ImageURL: &types.ImageURL{URL: "https://example.com/a.png"}},
			{Type: types.ContentPartText, Text: "[CONVERSATION_ID:p1]"},
		})},
	}

	id, cleaned := ExtractFirst(messages)
	if id != "p1" {
		t.Errorf("expected id p1, got %q", id)
	}

	content := cleaned[0].Content
	if !content.IsParts() {
		t.Fatal("content shape must be preserved")
	}
	// The tag-only text part vanishes; the image part survives.
	if len(content.Parts) != 2 {
		t.Fatalf("expected 2 parts after stripping, got %d", len(content.Parts))
	}
	if len(content.ImageURLs()) != 1 {
		t.Error("image part must be preserved")
	}
}

func TestExtractFirst_EmptyIDIgnored(t *testing.T) {
	messages := []types.ChatMessage{
		{Role: "user", Content: types.NewTextContent("hi [CONVERSATION_ID: ] then [CONVERSATION_ID:real]")},
	}

	id, _ := ExtractFirst(messages)
	if id != "real" {
		t.Errorf("blank id must not be captured, got %q", id)
	}
}

func TestInject(t *testing.T) {
	text := Inject(types.NewTextContent("answer"), "abc")
	if got := text.PlainText(); got != "answer\n\n[CONVERSATION_ID:abc]" {
		t.Errorf("unexpected injected text: %q", got)
	}

	parts := Inject(types.NewPartsContent([]types.ContentPart{
		{Type: types.ContentPartText, Text: "answer"},
	}), "abc")
	if !parts.IsParts() || len(parts.Parts) != 2 {
		t.Fatalf("expected appended tag part, got %+v", parts)
	}
	if parts.Parts[1].Text != "[CONVERSATION_ID:abc]" {
		t.Errorf("unexpected tag part: %q", parts.Parts[1].Text)
	}

	noop := Inject(types.NewTextContent("answer"), "")
	if noop.PlainText() != "answer" {
		t.Error("empty id must be a no-op")
	}
}
