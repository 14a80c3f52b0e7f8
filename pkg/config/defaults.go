package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 300 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Upstream defaults
	DefaultUpstreamBaseURL    = "https://www.kiira.ai"
	DefaultAccountAPIBaseURL  = "https://app-matrix-api.api.seaart.ai"
	DefaultUploaderBaseURL    = "https://aiart-uploader.api.seaart.dev"
	DefaultUpstreamAppID      = "gen.seagen.app"
	DefaultUpstreamTimeout    = 60 * time.Second
	DefaultStreamTimeout      = 180 * time.Second
	DefaultUpstreamMaxRetries = 2

	// Adapter defaults
	DefaultAgentName           = "Nano Banana Pro🔥"
	DefaultSimilarityThreshold = 0.7
	DefaultAgentCacheTTL       = 60 * time.Second

	// Conversation defaults
	DefaultConversationBackend = BackendMemory
	DefaultConversationTTL     = 24 * time.Hour
	DefaultSweepSchedule       = "0 * * * *"
	DefaultSQLitePath          = "data/sessions.db"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "triton"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Upstream
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultUpstreamBaseURL
	}
	if cfg.Upstream.AccountAPIBaseURL == "" {
		cfg.Upstream.AccountAPIBaseURL = DefaultAccountAPIBaseURL
	}
	if cfg.Upstream.UploaderBaseURL == "" {
		cfg.Upstream.UploaderBaseURL = DefaultUploaderBaseURL
	}
	if cfg.Upstream.AppID == "" {
		cfg.Upstream.AppID = DefaultUpstreamAppID
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.StreamTimeout == 0 {
		cfg.Upstream.StreamTimeout = DefaultStreamTimeout
	}
	if cfg.Upstream.MaxRetries == 0 {
		cfg.Upstream.MaxRetries = DefaultUpstreamMaxRetries
	}

	// Adapter
	if cfg.Adapter.DefaultAgent == "" {
		cfg.Adapter.DefaultAgent = DefaultAgentName
	}
	if cfg.Adapter.SimilarityThreshold == 0 {
		cfg.Adapter.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Adapter.AgentCacheTTL == 0 {
		cfg.Adapter.AgentCacheTTL = DefaultAgentCacheTTL
	}

	// Conversation
	if cfg.Conversation.Backend == "" {
		cfg.Conversation.Backend = DefaultConversationBackend
	}
	if cfg.Conversation.TTL == 0 {
		cfg.Conversation.TTL = DefaultConversationTTL
	}
	if cfg.Conversation.SweepSchedule == "" {
		cfg.Conversation.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Conversation.SQLitePath == "" {
		cfg.Conversation.SQLitePath = DefaultSQLitePath
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// DefaultConfig returns a configuration populated entirely with defaults.
// Metrics are enabled by default.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
