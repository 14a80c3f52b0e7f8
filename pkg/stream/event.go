package stream

import (
	"encoding/json"
	"strings"
)

// Media kinds the renderer knows about. The provider labels kinds in
// varying case ("image", "IMAGE"), so comparisons are case-insensitive.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Event is one decoded upstream notification. The provider's payloads are
// loosely shaped; every field is optional and unknown fields are ignored.
type Event struct {
	Choices []EventChoice `json:"choices"`
}

// EventChoice is one choice entry of an upstream event. Media resources
// may sit directly on the choice or one level down under the delta.
type EventChoice struct {
	Delta       *EventDelta     `json:"delta"`
	Message     *EventMessage   `json:"message"`
	SaResources []MediaResource `json:"sa_resources"`
}

// EventDelta carries incremental content and optionally nested media.
type EventDelta struct {
	Content     string          `json:"content"`
	SaResources []MediaResource `json:"sa_resources"`
}

// EventMessage is the full-message fallback some events carry instead of
// a delta.
type EventMessage struct {
	Content string `json:"content"`
}

// MediaResource is one entry of an upstream resource list. Raw preserves
// the provider's payload verbatim so clients can render fields this
// adapter does not model.
type MediaResource struct {
	Type string
	URL  string
	Raw  json.RawMessage
}

// UnmarshalJSON captures the raw payload alongside the typed fields.
func (m *MediaResource) UnmarshalJSON(data []byte) error {
	var typed struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	m.Type = typed.Type
	m.URL = typed.URL
	m.Raw = json.RawMessage(append([]byte(nil), data...))
	return nil
}

// MarshalJSON emits the verbatim upstream payload when present.
func (m MediaResource) MarshalJSON() ([]byte, error) {
	if m.Raw != nil {
		return m.Raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}{m.Type, m.URL})
}

// isRenderable reports whether the resource is a media item the adapter
// renders inline.
func (m *MediaResource) isRenderable() bool {
	if m.URL == "" {
		return false
	}
	kind := strings.ToLower(m.Type)
	return kind == MediaKindImage || kind == MediaKindVideo
}

// Kind returns the resource's lowercased type.
func (m *MediaResource) Kind() string {
	return strings.ToLower(m.Type)
}

// ParseEvent decodes one upstream data payload. Callers decode each line
// exactly once and reuse the result for both media and text extraction.
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Media returns the event's single media item: the first resource whose
// kind is image or video and that carries a URL, checking each choice's
// own resource list before its delta's. Scanning stops at the first hit,
// so an event yields at most one media item. Returns nil if none qualify.
func (e *Event) Media() *MediaResource {
	for i := range e.Choices {
		choice := &e.Choices[i]
		for j := range choice.SaResources {
			if choice.SaResources[j].isRenderable() {
				return &choice.SaResources[j]
			}
		}
		if choice.Delta != nil {
			for j := range choice.Delta.SaResources {
				if choice.Delta.SaResources[j].isRenderable() {
					return &choice.Delta.SaResources[j]
				}
			}
		}
	}
	return nil
}

// Text returns the event's text delta: the first choice's incremental
// content when present, else its full-message content. Empty when the
// event carries no text.
func (e *Event) Text() string {
	if len(e.Choices) == 0 {
		return ""
	}
	choice := &e.Choices[0]
	if choice.Delta != nil && choice.Delta.Content != "" {
		return choice.Delta.Content
	}
	if choice.Message != nil {
		return choice.Message.Content
	}
	return ""
}

// Resources returns the first choice's resource payloads verbatim, from
// both nesting depths, for clients that render media themselves.
func (e *Event) Resources() []json.RawMessage {
	if len(e.Choices) == 0 {
		return nil
	}
	choice := &e.Choices[0]

	var raw []json.RawMessage
	for _, res := range choice.SaResources {
		raw = append(raw, res.Raw)
	}
	if choice.Delta != nil {
		for _, res := range choice.Delta.SaResources {
			raw = append(raw, res.Raw)
		}
	}
	return raw
}
