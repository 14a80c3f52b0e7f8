package conversation

import (
	"fmt"
	"regexp"
	"strings"

	"kiira-hq/triton/pkg/proxy/types"
)

// tagPattern matches the inline continuity tag. Matching is case
// insensitive and the id may span line breaks.
var tagPattern = regexp.MustCompile(`(?is)\[CONVERSATION_ID:([^\]]+)\]`)

// Tag renders the wire form of the continuity tag for an id.
func Tag(id string) string {
	return fmt.Sprintf("[CONVERSATION_ID:%s]", id)
}

// ExtractFirst scans messages in order for an inline continuity tag. The
// first non-empty id found is captured; every tag occurrence, captured or
// not, is stripped from the returned messages so the upstream never sees
// the reserved pattern. If no tag is present the messages are returned
// unchanged.
func ExtractFirst(messages []types.ChatMessage) (string, []types.ChatMessage) {
	var captured string
	cleaned := make([]types.ChatMessage, len(messages))

	for i, msg := range messages {
		cleaned[i] = msg
		cleaned[i].Content = stripContent(msg.Content, &captured)
	}

	return captured, cleaned
}

// stripContent removes tag occurrences from message content, capturing the
// first non-empty id into captured if none has been seen yet.
func stripContent(content types.MessageContent, captured *string) types.MessageContent {
	if !content.IsParts() {
		return types.NewTextContent(stripText(content.Text, captured))
	}

	parts := make([]types.ContentPart, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part.Type != types.ContentPartText {
			parts = append(parts, part)
			continue
		}
		hadTag := tagPattern.MatchString(part.Text)
		part.Text = stripText(part.Text, captured)
		if hadTag && part.Text == "" {
			// A part that carried only the tag vanishes entirely.
			continue
		}
		parts = append(parts, part)
	}
	return types.NewPartsContent(parts)
}

// stripText removes all tag occurrences from text, capturing the first
// non-empty id.
func stripText(text string, captured *string) string {
	if !tagPattern.MatchString(text) {
		return text
	}

	for _, match := range tagPattern.FindAllStringSubmatch(text, -1) {
		id := strings.TrimSpace(match[1])
		if *captured == "" && id != "" {
			*captured = id
		}
	}

	return strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
}

// Inject appends the continuity tag for id to message content, preserving
// its shape: plain text gets the tag appended, multi-part content gets a
// new text part holding only the tag. No-op if id is empty.
func Inject(content types.MessageContent, id string) types.MessageContent {
	if id == "" {
		return content
	}

	if !content.IsParts() {
		return types.NewTextContent(InjectText(content.Text, id))
	}

	parts := make([]types.ContentPart, 0, len(content.Parts)+1)
	parts = append(parts, content.Parts...)
	parts = append(parts, types.ContentPart{
		Type: types.ContentPartText,
		Text: Tag(id),
	})
	return types.NewPartsContent(parts)
}

// InjectText appends the continuity tag for id to plain text. No-op if id
// is empty.
func InjectText(text, id string) string {
	if id == "" {
		return text
	}
	return text + "\n\n" + Tag(id)
}
