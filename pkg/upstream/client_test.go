package upstream

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"kiira-hq/triton/internal/upstreamtest"
	"kiira-hq/triton/pkg/agent"
	"kiira-hq/triton/pkg/config"
)

func newTestClient(t *testing.T, server *upstreamtest.Server) *Client {
	t.Helper()

	cfg := config.UpstreamConfig{
		BaseURL:           server.URL(),
		AccountAPIBaseURL: server.URL(),
		UploaderBaseURL:   server.URL(),
		AppID:             "gen.seagen.app",
		Timeout:           5 * time.Second,
		StreamTimeout:     5 * time.Second,
		MaxRetries:        0,
	}
	return NewClient(cfg, time.Minute, nil)
}

func TestClient_LoginGuest(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.Token = "guest-token-123"

	client := newTestClient(t, server)
	token, err := client.LoginGuest(context.Background())
	if err != nil {
		t.Fatalf("LoginGuest failed: %v", err)
	}
	if token != "guest-token-123" {
		t.Errorf("expected token %q, got %q", "guest-token-123", token)
	}
	if client.Token() != "guest-token-123" {
		t.Error("token must be stored on the client")
	}
}

func TestClient_ListGroups(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.Groups = []upstreamtest.Group{
		{ID: "g1", UserList: []upstreamtest.GroupMember{
			{Nickname: "GhostWriter", AccountNo: "gw1"},
			{Nickname: "Sketcher", AccountNo: "sk1"},
		}},
	}

	client := newTestClient(t, server)
	groups, err := client.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].ID != "g1" || len(groups[0].Members) != 2 {
		t.Errorf("unexpected group: %+v", groups[0])
	}
	if groups[0].Members[0].Nickname != "GhostWriter" || groups[0].Members[0].AccountNo != "gw1" {
		t.Errorf("unexpected member: %+v", groups[0].Members[0])
	}
}

func TestClient_ListAgentsCached(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.Agents = []upstreamtest.CatalogAgent{
		{ID: "1", Label: "GhostWriter", AccountNo: "gw1", Description: "writes"},
	}

	client := newTestClient(t, server)

	now := time.Now()
	client.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		entries, err := client.ListAgents(context.Background())
		if err != nil {
			t.Fatalf("ListAgents failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Label != "GhostWriter" {
			t.Fatalf("unexpected catalog: %+v", entries)
		}
	}
	if hits := server.AgentListHits(); hits != 1 {
		t.Errorf("expected 1 catalog fetch with warm cache, got %d", hits)
	}

	// An expired cache refetches.
	client.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := client.ListAgents(context.Background()); err != nil {
		t.Fatalf("ListAgents failed: %v", err)
	}
	if hits := server.AgentListHits(); hits != 2 {
		t.Errorf("expected refetch after TTL, got %d hits", hits)
	}
}

func TestClient_CreateGroup(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()

	client := newTestClient(t, server)
	binding, err := client.CreateGroup(context.Background(), "gw1")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if binding.GroupID == "" {
		t.Error("expected group id from creation response")
	}
	if binding.AccountNo != "gw1" {
		t.Errorf("expected member account number, got %q", binding.AccountNo)
	}
}

func TestClient_SendMessage(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.TaskID = "task-42"

	client := newTestClient(t, server)
	client.Bind(agent.Binding{GroupID: "g1", AccountNo: "gw1"})

	taskID, err := client.SendMessage(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if taskID != "task-42" {
		t.Errorf("expected task-42, got %q", taskID)
	}

	sent := server.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent message, got %d", len(sent))
	}
	payload := sent[0]
	if payload["group_id"] != "g1" || payload["at_account_no"] != "gw1" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if payload["message"] != "hello" {
		t.Errorf("unexpected message: %v", payload["message"])
	}
	id, _ := payload["id"].(string)
	if len(id) != 17 {
		t.Errorf("expected 17-digit message id, got %q", id)
	}
}

func TestClient_SendMessageArrayEnvelope(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.SendMessageAsArray = true
	server.TaskID = "task-array"

	client := newTestClient(t, server)
	client.Bind(agent.Binding{GroupID: "g1", AccountNo: "gw1"})

	taskID, err := client.SendMessage(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if taskID != "task-array" {
		t.Errorf("expected task id from array envelope, got %q", taskID)
	}
}

func TestClient_SendMessageWithoutAccountNo(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()

	// A restored session knows the group but not the member account.
	client := newTestClient(t, server)
	client.Restore("tok", "g1")

	if _, err := client.SendMessage(context.Background(), "hello", nil); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	payload := server.SentMessages()[0]
	if _, present := payload["at_account_no"]; present {
		t.Error("at_account_no must be omitted when unknown")
	}
}

func TestClient_SendMessageUnbound(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()

	client := newTestClient(t, server)
	if _, err := client.SendMessage(context.Background(), "hello", nil); err == nil {
		t.Fatal("expected error without a bound group")
	}
}

func TestClient_SendMessageUpstreamError(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.FailSendMessage = true

	client := newTestClient(t, server)
	client.Bind(agent.Binding{GroupID: "g1", AccountNo: "gw1"})

	_, err := client.SendMessage(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestClient_StreamTask(t *testing.T) {
	server := upstreamtest.New()
	defer server.Close()
	server.StreamLines = []string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		``,
		`: keep-alive comment`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: [DONE]`,
	}

	client := newTestClient(t, server)
	stream, err := client.StreamTask(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("StreamTask failed: %v", err)
	}
	defer stream.Close()

	var lines []string
	for {
		line, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		lines = append(lines, line)
	}

	// Blank and comment lines are filtered out.
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[2] != "data: [DONE]" {
		t.Errorf("unexpected final line: %q", lines[2])
	}
}

func TestNewMessageID(t *testing.T) {
	id := newMessageID()
	if len(id) != 17 {
		t.Errorf("expected 17 digits, got %d (%q)", len(id), id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric id, got %q", id)
		}
	}
}
