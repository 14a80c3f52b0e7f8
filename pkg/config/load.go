package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. If path is empty or the file does not exist, a default
// configuration is returned so the adapter can run from environment
// variables alone.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	cfg.Telemetry.Metrics.Enabled = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention TRITON_SECTION_FIELD (e.g., TRITON_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format TRITON_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("TRITON_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if d, ok := envDuration("TRITON_SERVER_READ_TIMEOUT"); ok {
		cfg.Server.ReadTimeout = d
	}
	if d, ok := envDuration("TRITON_SERVER_WRITE_TIMEOUT"); ok {
		cfg.Server.WriteTimeout = d
	}

	// Upstream overrides
	if val := os.Getenv("TRITON_UPSTREAM_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("TRITON_UPSTREAM_ACCOUNT_API_BASE_URL"); val != "" {
		cfg.Upstream.AccountAPIBaseURL = val
	}
	if val := os.Getenv("TRITON_UPSTREAM_UPLOADER_BASE_URL"); val != "" {
		cfg.Upstream.UploaderBaseURL = val
	}
	if d, ok := envDuration("TRITON_UPSTREAM_TIMEOUT"); ok {
		cfg.Upstream.Timeout = d
	}
	if d, ok := envDuration("TRITON_UPSTREAM_STREAM_TIMEOUT"); ok {
		cfg.Upstream.StreamTimeout = d
	}

	// Adapter overrides
	if val := os.Getenv("TRITON_ADAPTER_API_KEY"); val != "" {
		cfg.Adapter.APIKey = val
	}
	if val := os.Getenv("TRITON_ADAPTER_DEFAULT_AGENT"); val != "" {
		cfg.Adapter.DefaultAgent = val
	}
	if val := os.Getenv("TRITON_ADAPTER_ALLOWED_MODELS"); val != "" {
		cfg.Adapter.AllowedModels = parseModelList(val)
	}
	if val := os.Getenv("TRITON_ADAPTER_SIMILARITY_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Adapter.SimilarityThreshold = f
		}
	}
	if d, ok := envDuration("TRITON_ADAPTER_AGENT_CACHE_TTL"); ok {
		cfg.Adapter.AgentCacheTTL = d
	}

	// Conversation overrides
	if val := os.Getenv("TRITON_CONVERSATION_BACKEND"); val != "" {
		cfg.Conversation.Backend = val
	}
	if d, ok := envDuration("TRITON_CONVERSATION_TTL"); ok {
		cfg.Conversation.TTL = d
	}
	if val := os.Getenv("TRITON_CONVERSATION_SWEEP_SCHEDULE"); val != "" {
		cfg.Conversation.SweepSchedule = val
	}
	if val := os.Getenv("TRITON_CONVERSATION_SQLITE_PATH"); val != "" {
		cfg.Conversation.SQLitePath = val
	}

	// Telemetry overrides
	if val := os.Getenv("TRITON_TELEMETRY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("TRITON_TELEMETRY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("TRITON_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

// envDuration reads a duration-valued environment variable.
func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

// parseModelList parses an allow-list value that is either a JSON-style
// bracketed list or a comma-separated string. Both forms are accepted so the
// variable can be set the same way as in other deployments of the upstream.
func parseModelList(val string) []string {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]") {
		val = strings.TrimSuffix(strings.TrimPrefix(val, "["), "]")
	}
	var models []string
	for _, item := range strings.Split(val, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			models = append(models, item)
		}
	}
	return models
}
