package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for semantic errors after defaults have
// been applied. It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive, got %v", cfg.Server.WriteTimeout)
	}

	for _, u := range []struct {
		name  string
		value string
	}{
		{"upstream.base_url", cfg.Upstream.BaseURL},
		{"upstream.account_api_base_url", cfg.Upstream.AccountAPIBaseURL},
		{"upstream.uploader_base_url", cfg.Upstream.UploaderBaseURL},
	} {
		parsed, err := url.Parse(u.value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be a valid absolute URL, got %q", u.name, u.value)
		}
	}

	if cfg.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.StreamTimeout <= 0 {
		return fmt.Errorf("upstream.stream_timeout must be positive, got %v", cfg.Upstream.StreamTimeout)
	}
	if cfg.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries must not be negative, got %d", cfg.Upstream.MaxRetries)
	}

	if cfg.Adapter.DefaultAgent == "" {
		return fmt.Errorf("adapter.default_agent must not be empty")
	}
	if cfg.Adapter.SimilarityThreshold < 0 || cfg.Adapter.SimilarityThreshold > 1 {
		return fmt.Errorf("adapter.similarity_threshold must be between 0 and 1, got %v", cfg.Adapter.SimilarityThreshold)
	}
	if cfg.Adapter.AgentCacheTTL <= 0 {
		return fmt.Errorf("adapter.agent_cache_ttl must be positive, got %v", cfg.Adapter.AgentCacheTTL)
	}

	switch cfg.Conversation.Backend {
	case BackendMemory:
	case BackendSQLite:
		if cfg.Conversation.SQLitePath == "" {
			return fmt.Errorf("conversation.sqlite_path must not be empty when backend is %q", BackendSQLite)
		}
	default:
		return fmt.Errorf("conversation.backend must be %q or %q, got %q",
			BackendMemory, BackendSQLite, cfg.Conversation.Backend)
	}
	if cfg.Conversation.TTL <= 0 {
		return fmt.Errorf("conversation.ttl must be positive, got %v", cfg.Conversation.TTL)
	}
	if cfg.Conversation.SweepSchedule == "" {
		return fmt.Errorf("conversation.sweep_schedule must not be empty")
	}

	level := strings.ToLower(cfg.Telemetry.Logging.Level)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error, got %q",
			cfg.Telemetry.Logging.Level)
	}

	format := strings.ToLower(cfg.Telemetry.Logging.Format)
	switch format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be json or text, got %q",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
