package stream

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"kiira-hq/triton/pkg/conversation"
	"kiira-hq/triton/pkg/proxy/types"
)

// LineSource yields raw SSE lines from the upstream stream. Recv returns
// io.EOF when the stream ends.
type LineSource interface {
	Recv() (string, error)
	Close() error
}

// Item is one element of a translated stream: either a chunk to forward
// or a terminal error.
type Item struct {
	Chunk *types.ChatCompletionStreamChunk
	Err   error
}

// Translator converts an upstream event stream into OpenAI-compatible
// streaming chunks. All chunks of one stream share the same id, model
// and created timestamp.
type Translator struct {
	responseID     string
	model          string
	conversationID string
	created        int64
	logger         *slog.Logger
}

// NewTranslator builds a translator for one completion. taskID becomes
// part of the shared chunk id.
func NewTranslator(taskID, model, conversationID string, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		responseID:     "chatcmpl-" + taskID,
		model:          model,
		conversationID: conversationID,
		created:        time.Now().Unix(),
		logger:         logger.With("component", "stream"),
	}
}

// Stream consumes src and emits translated chunks on the returned
// channel. The first chunk carries the assistant role and the
// conversation id; the last carries finish_reason "stop", any rendered
// media and the continuity tag. The channel is closed when the stream
// ends, src is closed either way.
func (t *Translator) Stream(ctx context.Context, src LineSource) <-chan Item {
	out := make(chan Item)
	go func() {
		defer close(out)
		defer src.Close()
		t.run(ctx, src, out)
	}()
	return out
}

func (t *Translator) run(ctx context.Context, src LineSource, out chan<- Item) {
	if !t.send(ctx, out, Item{Chunk: t.metaChunk()}) {
		return
	}

	var lastMedia *MediaResource
	for {
		line, err := src.Recv()
		if err == io.EOF {
			// Upstream closed without a terminator. Finish the
			// stream cleanly anyway.
			t.send(ctx, out, Item{Chunk: t.closingChunk(lastMedia)})
			return
		}
		if err != nil {
			t.logger.DebugContext(ctx, "stream read failed", "error", err)
			t.send(ctx, out, Item{Err: err})
			return
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
			t.send(ctx, out, Item{Chunk: t.closingChunk(lastMedia)})
			return
		}

		event, err := ParseEvent([]byte(payload))
		if err != nil {
			t.logger.DebugContext(ctx, "skipping malformed stream line", "error", err)
			continue
		}
		if media := event.Media(); media != nil {
			lastMedia = media
		}
		if text := event.Text(); text != "" {
			if !t.send(ctx, out, Item{Chunk: t.contentChunk(text)}) {
				return
			}
		}
	}
}

func (t *Translator) send(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// metaChunk is the stream opener: assistant role, conversation id, no
// content.
func (t *Translator) metaChunk() *types.ChatCompletionStreamChunk {
	return &types.ChatCompletionStreamChunk{
		ID:      t.responseID,
		Object:  types.ObjectChatCompletionChunk,
		Created: t.created,
		Model:   t.model,
		Choices: []types.StreamChoice{{
			Index: 0,
			Delta: types.Delta{Role: "assistant"},
		}},
		ConversationID: t.conversationID,
	}
}

func (t *Translator) contentChunk(text string) *types.ChatCompletionStreamChunk {
	return &types.ChatCompletionStreamChunk{
		ID:      t.responseID,
		Object:  types.ObjectChatCompletionChunk,
		Created: t.created,
		Model:   t.model,
		Choices: []types.StreamChoice{{
			Index: 0,
			Delta: types.Delta{Content: text},
		}},
	}
}

// closingChunk carries rendered media (if any), the continuity tag and
// finish_reason "stop".
func (t *Translator) closingChunk(media *MediaResource) *types.ChatCompletionStreamChunk {
	var tail string
	if media != nil {
		tail = RenderMedia(media.Kind(), media.URL)
	}
	tail = conversation.InjectText(tail, t.conversationID)

	finish := types.FinishReasonStop
	return &types.ChatCompletionStreamChunk{
		ID:      t.responseID,
		Object:  types.ObjectChatCompletionChunk,
		Created: t.created,
		Model:   t.model,
		Choices: []types.StreamChoice{{
			Index:        0,
			Delta:        types.Delta{Content: tail},
			FinishReason: &finish,
		}},
	}
}
