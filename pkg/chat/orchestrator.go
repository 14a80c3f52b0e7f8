package chat

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kiira-hq/triton/pkg/agent"
	"kiira-hq/triton/pkg/config"
	"kiira-hq/triton/pkg/conversation"
	"kiira-hq/triton/pkg/proxy/types"
	"kiira-hq/triton/pkg/stream"
	"kiira-hq/triton/pkg/telemetry/metrics"
	"kiira-hq/triton/pkg/upstream"
)

// probeMessage is the liveness-check input answered without contacting
// the upstream.
const probeMessage = "hi"

// Fixed metadata for the /models listing. The upstream catalog exposes no
// creation times, so the listing uses the same placeholder timestamp the
// OpenAI API popularized.
const (
	modelsCreated int64 = 1677610602
	modelOwner          = "kiira"
)

// Orchestrator runs chat completions against the upstream provider. It is
// safe for concurrent use; each request gets its own upstream client.
// The configuration can be swapped at runtime via SetConfig, so adapter
// settings follow config file reloads without a restart.
type Orchestrator struct {
	store  conversation.Store
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config

	// metrics is optional; nil disables recording.
	metrics *metrics.Collector

	// newClient is injectable for tests.
	newClient func() *upstream.Client
}

// NewOrchestrator creates an orchestrator over the given session store.
func NewOrchestrator(cfg *config.Config, store conversation.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "chat")

	o := &Orchestrator{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	o.newClient = func() *upstream.Client {
		c := o.config()
		return upstream.NewClient(c.Upstream, c.Adapter.AgentCacheTTL, logger)
	}
	return o
}

// SetMetrics attaches a collector for upload accounting.
func (o *Orchestrator) SetMetrics(c *metrics.Collector) {
	o.metrics = c
}

// SetConfig swaps the active configuration. In-flight requests keep the
// configuration they started with.
func (o *Orchestrator) SetConfig(cfg *config.Config) {
	o.mu.Lock()
	o.cfg = cfg
	o.mu.Unlock()
}

func (o *Orchestrator) config() *config.Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg
}

// plan is the request-local outcome of parsing: the effective model, the
// conversation id to try, and the prompt to forward.
type plan struct {
	model          string
	conversationID string
	prompt         string
	images         []string
	probe          bool
}

func (o *Orchestrator) threshold() float64 {
	if t := o.config().Adapter.SimilarityThreshold; t > 0 {
		return t
	}
	return agent.DefaultSimilarityThreshold
}

// plan validates the request against the allow-list and extracts the
// conversation id, prompt and image attachments. No upstream contact.
func (o *Orchestrator) plan(req *types.ChatCompletionRequest) (*plan, error) {
	adapter := o.config().Adapter

	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, ErrMissingModel
	}

	if allowed := adapter.AllowedModels; len(allowed) > 0 {
		ok := false
		for _, candidate := range allowed {
			if agent.IsMatch(model, candidate, o.threshold()) {
				ok = true
				break
			}
		}
		if !ok {
			return nil, &ModelNotAllowedError{Model: model}
		}
	}

	tagID, cleaned := conversation.ExtractFirst(req.Messages)
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = tagID
	}

	last := (&types.ChatCompletionRequest{Messages: cleaned}).LastUserMessage()
	if last == nil {
		return nil, ErrNoUserMessage
	}
	prompt := last.Content.PlainText()
	images := last.Content.ImageURLs()
	if len(images) == 0 {
		if src := bareImageSource(prompt); src != "" {
			images = []string{src}
		}
	}

	return &plan{
		model:          model,
		conversationID: conversationID,
		prompt:         prompt,
		images:         images,
		probe:          strings.TrimSpace(prompt) == probeMessage && len(images) == 0,
	}, nil
}

// dispatch performs the upstream leg: session reuse or fresh resolution,
// image upload, and message submission. Returns the client bound to the
// conversation's group, the task id to stream, and the conversation id
// (freshly minted when no live session matched).
func (o *Orchestrator) dispatch(ctx context.Context, p *plan) (*upstream.Client, string, string, error) {
	client := o.newClient()

	var sess *conversation.Session
	if p.conversationID != "" {
		found, err := o.store.Get(p.conversationID)
		if err != nil {
			return nil, "", "", err
		}
		if found != nil && agent.IsMatch(p.model, found.AgentName, o.threshold()) {
			sess = found
		} else if found != nil {
			o.logger.InfoContext(ctx, "Session bound to different agent, starting fresh",
				"conversation_id", p.conversationID,
				"session_agent", found.AgentName,
				"requested_model", p.model,
			)
		}
	}

	if sess != nil {
		client.Restore(sess.Token, sess.GroupID)
		if err := o.store.Touch(sess.ID); err != nil {
			o.logger.WarnContext(ctx, "Failed to touch session", "conversation_id", sess.ID, "error", err)
		}
	} else {
		if _, err := client.LoginGuest(ctx); err != nil {
			return nil, "", "", err
		}
		if name, err := client.MyInfo(ctx); err == nil {
			o.logger.DebugContext(ctx, "Guest identity established", "guest_name", name)
		}
		resolver := agent.NewResolver(client, o.threshold(), o.logger)
		if _, err := resolver.Resolve(ctx, p.model); err != nil {
			return nil, "", "", err
		}
	}

	var resources []upstream.Resource
	for _, source := range p.images {
		res, err := client.UploadResource(ctx, source)
		if err != nil {
			return nil, "", "", err
		}
		if o.metrics != nil {
			o.metrics.RecordUpload()
		}
		resources = append(resources, *res)
	}

	taskID, err := client.SendMessage(ctx, p.prompt, resources)
	if err != nil {
		return nil, "", "", err
	}

	conversationID := p.conversationID
	if sess == nil {
		created, err := o.store.Create(p.model, client.GroupID(), client.Token())
		if err != nil {
			return nil, "", "", err
		}
		conversationID = created.ID
		o.logger.InfoContext(ctx, "Created conversation session",
			"conversation_id", conversationID,
			"model", p.model,
			"group_id", created.GroupID,
		)
	}
	return client, taskID, conversationID, nil
}

// Complete runs a non-streaming completion: the whole upstream stream is
// aggregated into a single response.
func (o *Orchestrator) Complete(ctx context.Context, req *types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	p, err := o.plan(req)
	if err != nil {
		return nil, err
	}
	if p.probe {
		return o.probeResponse(p.model), nil
	}

	client, taskID, conversationID, err := o.dispatch(ctx, p)
	if err != nil {
		return nil, err
	}

	src, err := client.StreamTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	agg, err := stream.Collect(src)
	if err != nil {
		return nil, err
	}

	content := conversation.InjectText(agg.Content(), conversationID)
	return &types.ChatCompletionResponse{
		ID:      "chatcmpl-" + taskID,
		Object:  types.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   p.model,
		Choices: []types.Choice{{
			Index: 0,
			Message: types.AssistantMessage{
				Role:        "assistant",
				Content:     content,
				SaResources: agg.Resources,
			},
			FinishReason: types.FinishReasonStop,
		}},
		Usage:          estimateUsage(p.prompt, agg.Text),
		ConversationID: conversationID,
	}, nil
}

// bareImageSource reports whether the prompt is nothing but an image
// reference (a data URI or a URL with an image extension), so a caller
// can attach an image without multi-part content.
func bareImageSource(prompt string) string {
	s := strings.TrimSpace(prompt)
	if strings.HasPrefix(s, "data:image/") {
		return s
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return ""
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return ""
	}
	base, _, _ := strings.Cut(s, "?")
	switch strings.ToLower(path.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return s
	}
	return ""
}

// estimateUsage approximates token counts by whitespace-separated words.
// The upstream reports no real counts, so this keeps clients that sum
// usage fields working without fabricating model-specific numbers.
func estimateUsage(prompt, completion string) types.Usage {
	p := len(strings.Fields(prompt))
	c := len(strings.Fields(completion))
	return types.Usage{
		PromptTokens:     p,
		CompletionTokens: c,
		TotalTokens:      p + c,
	}
}

// Stream runs a streaming completion. Errors raised before the upstream
// stream opens are returned synchronously; later failures arrive as the
// final Item on the channel.
func (o *Orchestrator) Stream(ctx context.Context, req *types.ChatCompletionRequest) (<-chan stream.Item, error) {
	p, err := o.plan(req)
	if err != nil {
		return nil, err
	}
	if p.probe {
		return o.probeStream(p.model), nil
	}

	client, taskID, conversationID, err := o.dispatch(ctx, p)
	if err != nil {
		return nil, err
	}

	src, err := client.StreamTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	translator := stream.NewTranslator(taskID, p.model, conversationID, o.logger)
	return translator.Stream(ctx, src), nil
}

// Models lists the models this adapter serves: the allow-list when one is
// configured, else the default agent.
func (o *Orchestrator) Models() types.ModelsResponse {
	adapter := o.config().Adapter
	names := adapter.AllowedModels
	if len(names) == 0 {
		names = []string{adapter.DefaultAgent}
	}

	data := make([]types.ModelInfo, 0, len(names))
	for _, name := range names {
		data = append(data, types.ModelInfo{
			ID:      name,
			Object:  types.ObjectModel,
			Created: modelsCreated,
			OwnedBy: modelOwner,
		})
	}
	return types.ModelsResponse{Object: types.ObjectList, Data: data}
}

func (o *Orchestrator) probeResponse(model string) *types.ChatCompletionResponse {
	return &types.ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  types.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []types.Choice{{
			Index:        0,
			Message:      types.AssistantMessage{Role: "assistant", Content: probeMessage},
			FinishReason: types.FinishReasonStop,
		}},
	}
}

func (o *Orchestrator) probeStream(model string) <-chan stream.Item {
	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()
	finish := types.FinishReasonStop

	out := make(chan stream.Item, 2)
	out <- stream.Item{Chunk: &types.ChatCompletionStreamChunk{
		ID:      id,
		Object:  types.ObjectChatCompletionChunk,
		Created: created,
		Model:   model,
		Choices: []types.StreamChoice{{
			Index: 0,
			Delta: types.Delta{Role: "assistant", Content: probeMessage},
		}},
	}}
	out <- stream.Item{Chunk: &types.ChatCompletionStreamChunk{
		ID:      id,
		Object:  types.ObjectChatCompletionChunk,
		Created: created,
		Model:   model,
		Choices: []types.StreamChoice{{
			Index:        0,
			Delta:        types.Delta{},
			FinishReason: &finish,
		}},
	}}
	close(out)
	return out
}
