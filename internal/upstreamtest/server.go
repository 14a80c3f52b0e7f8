// Package upstreamtest provides a fake Kiira provider for tests: an
// httptest server implementing the login, group, catalog, messaging, and
// streaming endpoints with scriptable responses.
package upstreamtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// GroupMember mirrors one member of a fake chat group.
type GroupMember struct {
	Nickname  string `json:"nickname"`
	AccountNo string `json:"account_no"`
}

// Group mirrors one fake chat group.
type Group struct {
	ID       string        `json:"id"`
	UserList []GroupMember `json:"user_list"`
}

// CatalogAgent mirrors one fake catalog entry.
type CatalogAgent struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	AccountNo   string `json:"account_no"`
	Description string `json:"description"`
}

// Server is a scriptable fake provider. Zero value fields produce sensible
// defaults; tests mutate the exported fields before issuing requests.
type Server struct {
	// Token is returned by login-guest. Defaults to "test-token".
	Token string

	// Groups is returned by my-chat-group-list.
	Groups []Group

	// Agents is returned by agent-list.
	Agents []CatalogAgent

	// TaskID is returned by send-message. Defaults to "task-1".
	TaskID string

	// SendMessageAsArray makes send-message wrap its data field in a
	// one-element array, mirroring the provider's older envelope shape.
	SendMessageAsArray bool

	// StreamLines are written verbatim, one per line, by the stream
	// endpoint.
	StreamLines []string

	// FailSendMessage makes send-message return HTTP 500.
	FailSendMessage bool

	mu            sync.Mutex
	agentListHits int
	sentMessages  []map[string]any
	createdGroups []string
	uploads       []string

	httpServer *httptest.Server
}

// New starts a fake provider. Callers must Close it.
func New() *Server {
	s := &Server{
		Token:  "test-token",
		TaskID: "task-1",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login-guest", s.handleLogin)
	mux.HandleFunc("/api/v1/my", s.handleMy)
	mux.HandleFunc("/api/v1/my-chat-group-list", s.handleGroupList)
	mux.HandleFunc("/api/v1/agent-list", s.handleAgentList)
	mux.HandleFunc("/api/v1/create-chat-group", s.handleCreateGroup)
	mux.HandleFunc("/api/v1/send-message", s.handleSendMessage)
	mux.HandleFunc("/api/v1/stream/chat/completions", s.handleStream)
	mux.HandleFunc("/api/upload/pre-sign", s.handleUploadPresign)
	mux.HandleFunc("/api/upload/complete", s.handleUploadComplete)
	mux.HandleFunc("/storage/", s.handleUploadPut)

	s.httpServer = httptest.NewServer(mux)
	return s
}

// URL returns the fake provider's base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the fake provider down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// AgentListHits reports how many times the catalog endpoint was called.
func (s *Server) AgentListHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentListHits
}

// SentMessages returns the decoded payloads of all send-message calls.
func (s *Server) SentMessages() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.sentMessages...)
}

// Uploads returns the file names of all pre-signed uploads, in order.
func (s *Server) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// CreatedGroups returns the account numbers group creation was requested
// for, in order.
func (s *Server) CreatedGroups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.createdGroups...)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"data": map[string]any{"token": s.Token}})
}

func (s *Server) handleMy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"data": map[string]any{"name": "Guest User"}})
}

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	items := s.Groups
	if items == nil {
		items = []Group{}
	}
	writeJSON(w, map[string]any{"data": map[string]any{"items": items}})
}

func (s *Server) handleAgentList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.agentListHits++
	s.mu.Unlock()

	items := s.Agents
	if items == nil {
		items = []CatalogAgent{}
	}
	writeJSON(w, map[string]any{"data": map[string]any{"items": items}})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AgentAccountNos []string `json:"agent_account_nos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.AgentAccountNos) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.createdGroups = append(s.createdGroups, payload.AgentAccountNos[0])
	groupID := fmt.Sprintf("group-%d", len(s.createdGroups))
	s.mu.Unlock()

	writeJSON(w, map[string]any{"data": map[string]any{
		"id": groupID,
		"user_list": []map[string]any{
			{"account_no": payload.AgentAccountNos[0]},
		},
	}})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if s.FailSendMessage {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.sentMessages = append(s.sentMessages, payload)
	s.mu.Unlock()

	data := any(map[string]any{"task_id": s.TaskID})
	if s.SendMessageAsArray {
		data = []any{map[string]any{"task_id": s.TaskID}}
	}
	writeJSON(w, map[string]any{"data": data})
}

func (s *Server) handleUploadPresign(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID       string `json:"id"`
		FileName string `json:"file_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.uploads = append(s.uploads, payload.FileName)
	s.mu.Unlock()

	writeJSON(w, map[string]any{"data": map[string]any{
		"id": payload.ID,
		"pre_signs": []map[string]any{{
			"url":     s.httpServer.URL + "/storage/" + payload.ID,
			"headers": map[string]string{"x-storage-signature": "sig-1"},
		}},
	}})
}

func (s *Server) handleUploadPut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut || r.Header.Get("x-storage-signature") == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUploadComplete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"status": map[string]any{"code": 10000},
		"data": map[string]any{
			"url":  "https://cdn.example.com/" + payload.ID,
			"path": "/resources/" + payload.ID,
		},
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for _, line := range s.StreamLines {
		fmt.Fprintf(w, "%s\n", line)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
