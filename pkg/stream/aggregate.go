package stream

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrEmptyReply is returned when the upstream stream ends without any
// text or media.
var ErrEmptyReply = errors.New("upstream reply contained no content")

// Aggregate is the accumulated result of a whole upstream stream, used
// for non-streaming completions.
type Aggregate struct {
	// Text is the concatenated text of every event, in arrival order.
	Text string

	// Media is the last media item seen, or nil.
	Media *MediaResource

	// Resources holds the raw resource payloads of every media-bearing
	// event, verbatim and in arrival order.
	Resources []json.RawMessage
}

// Content renders the aggregate as a single reply string: the
// accumulated text followed by any rendered media.
func (a *Aggregate) Content() string {
	var b strings.Builder
	b.WriteString(a.Text)
	if a.Media != nil {
		b.WriteString(RenderMedia(a.Media.Kind(), a.Media.URL))
	}
	return b.String()
}

// Collect drains src and accumulates the whole reply. Text keeps
// accumulating after a media event. Returns ErrEmptyReply when the
// stream produced neither text nor media, and closes src either way.
func Collect(src LineSource) (*Aggregate, error) {
	defer src.Close()

	agg := &Aggregate{}
	for {
		line, err := src.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			break
		}

		event, parseErr := ParseEvent([]byte(payload))
		if parseErr != nil {
			continue
		}
		if media := event.Media(); media != nil {
			agg.Media = media
			agg.Resources = append(agg.Resources, event.Resources()...)
		}
		agg.Text += event.Text()
	}

	if agg.Text == "" && agg.Media == nil {
		return nil, ErrEmptyReply
	}
	return agg, nil
}
