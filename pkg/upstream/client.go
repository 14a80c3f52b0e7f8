package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"kiira-hq/triton/pkg/agent"
	"kiira-hq/triton/pkg/config"
)

// Resource is an uploaded file attachment referenced by a message.
type Resource struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Size int    `json:"size"`
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
}

// Client talks to the Kiira provider on behalf of one device identity.
// It carries the guest token and the currently bound chat group, so one
// Client serves one logical conversation at a time.
//
// Client implements agent.Directory.
type Client struct {
	cfg       config.UpstreamConfig
	transport *Transport
	logger    *slog.Logger
	deviceID  string

	mu        sync.Mutex
	token     string
	groupID   string
	accountNo string

	agentCache    []agent.CatalogEntry
	agentCachedAt time.Time
	agentCacheTTL time.Duration

	// now is injectable for cache tests.
	now func() time.Time
}

// NewClient creates a client with a fresh device identity. LoginGuest must
// be called before any authenticated operation.
func NewClient(cfg config.UpstreamConfig, agentCacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:           cfg,
		transport:     NewTransport(cfg.Timeout, cfg.MaxRetries, logger),
		logger:        logger.With("component", "upstream-client"),
		deviceID:      uuid.NewString(),
		agentCacheTTL: agentCacheTTL,
		now:           time.Now,
	}
}

// Restore seeds the client with a previously issued token and group so an
// existing conversation session can be resumed without a fresh login.
func (c *Client) Restore(token, groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.groupID = groupID
}

// Token returns the current auth token, empty before login.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// GroupID returns the currently bound chat group, empty before binding.
func (c *Client) GroupID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groupID
}

// DeviceID returns the client's device identity.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Bind records a resolved group binding for subsequent sends.
// Implements agent.Directory.
func (c *Client) Bind(binding agent.Binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groupID = binding.GroupID
	c.accountNo = binding.AccountNo
}

// LoginGuest performs a guest login against the account service and stores
// the resulting token on the client.
func (c *Client) LoginGuest(ctx context.Context) (string, error) {
	url := c.cfg.AccountAPIBaseURL + "/api/v1/login-guest"
	headers := c.buildHeaders(headerSpec{
		referer:      c.cfg.BaseURL + "/",
		secFetchSite: "cross-site",
	})

	envelope, err := c.transport.DoJSON(ctx, "login-guest", "POST", url, []byte("{}"), headers)
	if err != nil {
		return "", err
	}

	token := envelope.Get("data.token").String()
	if token == "" {
		return "", &AuthError{Message: "guest login returned no token"}
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "guest login succeeded", "device_id", c.deviceID)
	return token, nil
}

// MyInfo returns the display name of the account behind the current token.
func (c *Client) MyInfo(ctx context.Context) (string, error) {
	url := c.cfg.BaseURL + "/api/v1/my"
	headers := c.buildHeaders(headerSpec{referer: c.cfg.BaseURL + "/chat"})

	envelope, err := c.transport.DoJSON(ctx, "my", "POST", url, []byte("{}"), headers)
	if err != nil {
		return "", err
	}
	return envelope.Get("data.name").String(), nil
}

// ListGroups returns the account's existing chat groups with their member
// agents. Implements agent.Directory.
func (c *Client) ListGroups(ctx context.Context) ([]agent.Group, error) {
	url := c.cfg.BaseURL + "/api/v1/my-chat-group-list"
	headers := c.buildHeaders(headerSpec{acceptLanguage: "eh"})

	body, _ := json.Marshal(map[string]any{"page": 1, "page_size": 999})
	envelope, err := c.transport.DoJSON(ctx, "my-chat-group-list", "POST", url, body, headers)
	if err != nil {
		return nil, err
	}

	var groups []agent.Group
	envelope.Get("data.items").ForEach(func(_, item gjson.Result) bool {
		group := agent.Group{ID: item.Get("id").String()}
		item.Get("user_list").ForEach(func(_, user gjson.Result) bool {
			group.Members = append(group.Members, agent.GroupMember{
				Nickname:  user.Get("nickname").String(),
				AccountNo: user.Get("account_no").String(),
			})
			return true
		})
		groups = append(groups, group)
		return true
	})

	return groups, nil
}

// ListAgents returns the provider's global agent catalog. Results are
// cached for the configured TTL to bound catalog request volume.
// Implements agent.Directory.
func (c *Client) ListAgents(ctx context.Context) ([]agent.CatalogEntry, error) {
	c.mu.Lock()
	if c.agentCache != nil && c.now().Sub(c.agentCachedAt) < c.agentCacheTTL {
		cached := c.agentCache
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	url := c.cfg.BaseURL + "/api/v1/agent-list"
	headers := c.buildHeaders(headerSpec{referer: c.cfg.BaseURL + "/search"})

	body, _ := json.Marshal(map[string]any{"category_ids": []string{}, "keyword": ""})
	envelope, err := c.transport.DoJSON(ctx, "agent-list", "POST", url, body, headers)
	if err != nil {
		return nil, err
	}

	var entries []agent.CatalogEntry
	envelope.Get("data.items").ForEach(func(_, item gjson.Result) bool {
		entries = append(entries, agent.CatalogEntry{
			ID:          item.Get("id").String(),
			Label:       item.Get("label").String(),
			AccountNo:   item.Get("account_no").String(),
			Description: item.Get("description").String(),
		})
		return true
	})

	c.mu.Lock()
	c.agentCache = entries
	c.agentCachedAt = c.now()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "agent catalog refreshed", "agents", len(entries))
	return entries, nil
}

// CreateGroup provisions a new chat group bound to one agent account.
// Implements agent.Directory.
func (c *Client) CreateGroup(ctx context.Context, accountNo string) (agent.Binding, error) {
	url := c.cfg.BaseURL + "/api/v1/create-chat-group"
	headers := c.buildHeaders(headerSpec{referer: c.cfg.BaseURL + "/search"})

	body, _ := json.Marshal(map[string]any{"agent_account_nos": []string{accountNo}})
	envelope, err := c.transport.DoJSON(ctx, "create-chat-group", "POST", url, body, headers)
	if err != nil {
		return agent.Binding{}, err
	}

	data := envelope.Get("data")
	groupID := data.Get("id").String()
	if groupID == "" {
		return agent.Binding{}, &ParseError{
			Operation:   "create-chat-group",
			RawResponse: truncate(envelope.Raw, 512),
		}
	}

	return agent.Binding{
		GroupID:   groupID,
		AccountNo: data.Get("user_list.0.account_no").String(),
	}, nil
}

// SendMessage submits a message to the bound group and returns the task id
// to stream the reply from. The envelope's data field arrives as either an
// object or a one-element array depending on provider version; both carry
// task_id.
func (c *Client) SendMessage(ctx context.Context, message string, resources []Resource) (string, error) {
	c.mu.Lock()
	groupID, accountNo := c.groupID, c.accountNo
	c.mu.Unlock()

	if groupID == "" {
		return "", fmt.Errorf("no chat group bound, resolve an agent first")
	}

	url := c.cfg.BaseURL + "/api/v1/send-message"
	headers := c.buildHeaders(headerSpec{acceptLanguage: "zh"})

	if resources == nil {
		resources = []Resource{}
	}

	payload := map[string]any{
		"id":                 newMessageID(),
		"at_account_no_type": "bot",
		"resources":          resources,
		"group_id":           groupID,
		"message":            message,
		"agent_type":         "agent",
	}
	// A restored session knows its group but not the member account; the
	// provider routes on group_id alone in that case.
	if accountNo != "" {
		payload["at_account_no"] = accountNo
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode message payload: %w", err)
	}

	envelope, err := c.transport.DoJSON(ctx, "send-message", "POST", url, body, headers)
	if err != nil {
		return "", err
	}

	taskID := envelope.Get("data.task_id").String()
	if taskID == "" {
		taskID = envelope.Get("data.0.task_id").String()
	}
	if taskID == "" {
		return "", &ParseError{
			Operation:   "send-message",
			RawResponse: truncate(envelope.Raw, 512),
		}
	}

	c.logger.InfoContext(ctx, "message submitted",
		"group_id", groupID,
		"task_id", taskID,
	)
	return taskID, nil
}

// newMessageID produces the 17-digit numeric message id the provider
// expects.
func newMessageID() string {
	id := strconv.FormatInt(time.Now().UnixNano(), 10)
	if len(id) > 17 {
		id = id[:17]
	}
	return id
}
