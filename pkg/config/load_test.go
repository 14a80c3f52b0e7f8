package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "45s"

upstream:
  base_url: "https://upstream.example.com"
  timeout: "90s"
  max_retries: 3

adapter:
  api_key: "test-key-123"
  default_agent: "GhostWriter"
  allowed_models: ["GhostWriter", "Sketcher"]
  similarity_threshold: 0.8

conversation:
  backend: "memory"
  ttl: "12h"

telemetry:
  logging:
    level: "debug"
    format: "text"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("expected read timeout 45s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Upstream.BaseURL != "https://upstream.example.com" {
		t.Errorf("expected base URL %q, got %q", "https://upstream.example.com", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", cfg.Upstream.MaxRetries)
	}
	if cfg.Adapter.DefaultAgent != "GhostWriter" {
		t.Errorf("expected default agent %q, got %q", "GhostWriter", cfg.Adapter.DefaultAgent)
	}
	if len(cfg.Adapter.AllowedModels) != 2 {
		t.Errorf("expected 2 allowed models, got %d", len(cfg.Adapter.AllowedModels))
	}
	if cfg.Adapter.SimilarityThreshold != 0.8 {
		t.Errorf("expected similarity threshold 0.8, got %v", cfg.Adapter.SimilarityThreshold)
	}
	if cfg.Conversation.TTL != 12*time.Hour {
		t.Errorf("expected conversation TTL 12h, got %v", cfg.Conversation.TTL)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Telemetry.Logging.Level)
	}

	// Fields not in the file get defaults.
	if cfg.Upstream.AccountAPIBaseURL != DefaultAccountAPIBaseURL {
		t.Errorf("expected default account API base URL, got %q", cfg.Upstream.AccountAPIBaseURL)
	}
	if cfg.Conversation.SweepSchedule != DefaultSweepSchedule {
		t.Errorf("expected default sweep schedule, got %q", cfg.Conversation.SweepSchedule)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Adapter.DefaultAgent != DefaultAgentName {
		t.Errorf("expected default agent, got %q", cfg.Adapter.DefaultAgent)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected defaults for empty path, got error: %v", err)
	}
	if cfg.Upstream.BaseURL != DefaultUpstreamBaseURL {
		t.Errorf("expected default upstream base URL, got %q", cfg.Upstream.BaseURL)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("server: [not: valid"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
adapter:
  similarity_threshold: 1.5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "similarity_threshold") {
		t.Errorf("expected similarity_threshold in error, got: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("TRITON_SERVER_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("TRITON_ADAPTER_API_KEY", "env-secret")
	t.Setenv("TRITON_ADAPTER_DEFAULT_AGENT", "Sketcher")
	t.Setenv("TRITON_ADAPTER_ALLOWED_MODELS", `["GhostWriter", "Sketcher"]`)
	t.Setenv("TRITON_CONVERSATION_TTL", "48h")
	t.Setenv("TRITON_TELEMETRY_LOG_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Adapter.APIKey != "env-secret" {
		t.Errorf("expected env API key, got %q", cfg.Adapter.APIKey)
	}
	if cfg.Adapter.DefaultAgent != "Sketcher" {
		t.Errorf("expected env default agent, got %q", cfg.Adapter.DefaultAgent)
	}
	want := []string{"GhostWriter", "Sketcher"}
	if len(cfg.Adapter.AllowedModels) != len(want) {
		t.Fatalf("expected %d allowed models, got %d", len(want), len(cfg.Adapter.AllowedModels))
	}
	for i, m := range want {
		if cfg.Adapter.AllowedModels[i] != m {
			t.Errorf("allowed model %d: expected %q, got %q", i, m, cfg.Adapter.AllowedModels[i])
		}
	}
	if cfg.Conversation.TTL != 48*time.Hour {
		t.Errorf("expected env conversation TTL 48h, got %v", cfg.Conversation.TTL)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected env log level warn, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestParseModelList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"comma_separated", "a,b,c", []string{"a", "b", "c"}},
		{"bracketed_quoted", `["Nano Banana Pro🔥", "GhostWriter"]`, []string{"Nano Banana Pro🔥", "GhostWriter"}},
		{"whitespace", " a , b ", []string{"a", "b"}},
		{"empty_items", "a,,b,", []string{"a", "b"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseModelList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("item %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
