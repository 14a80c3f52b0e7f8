package config

import "time"

// Config is the root configuration structure for Triton.
// It contains all configuration sections for the HTTP server, the upstream
// Kiira provider, the adapter behaviour, conversation storage, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Upstream contains configuration for the Kiira upstream provider,
	// including base URLs and transport settings.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Adapter contains adapter behaviour: API key, model allow-list,
	// default agent, and fuzzy matching settings.
	Adapter AdapterConfig `yaml:"adapter"`

	// Conversation contains configuration for the conversation session
	// store: backend selection, TTL, and the expiry sweep schedule.
	Conversation ConversationConfig `yaml:"conversation"`

	// Telemetry contains observability configuration for logging and
	// metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the adapter's HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Streaming responses need this to cover the whole stream.
	// Default: 300s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// UpstreamConfig contains configuration for the Kiira upstream provider.
type UpstreamConfig struct {
	// BaseURL is the base URL of the Kiira chat API.
	// Default: "https://www.kiira.ai"
	BaseURL string `yaml:"base_url"`

	// AccountAPIBaseURL is the base URL of the account API used for guest
	// login.
	// Default: "https://app-matrix-api.api.seaart.ai"
	AccountAPIBaseURL string `yaml:"account_api_base_url"`

	// UploaderBaseURL is the base URL of the resource uploader API.
	// Default: "https://aiart-uploader.api.seaart.dev"
	UploaderBaseURL string `yaml:"uploader_base_url"`

	// AppID is the application identifier sent in the x-app-id header.
	// Default: "gen.seagen.app"
	AppID string `yaml:"app_id"`

	// Timeout is the per-request timeout for regular upstream calls.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// StreamTimeout is the timeout applied to streaming reads of a chat
	// task. The upstream can take minutes to produce media.
	// Default: 180s
	StreamTimeout time.Duration `yaml:"stream_timeout"`

	// MaxRetries is the number of retries for transient upstream errors.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`
}

// AdapterConfig contains adapter behaviour configuration.
type AdapterConfig struct {
	// APIKey protects the adapter's own API surface. Clients present it
	// via "Authorization: Bearer <key>" or "X-API-Key: <key>".
	// When empty, authentication is disabled.
	APIKey string `yaml:"api_key"`

	// DefaultAgent is the agent listed by GET /models when no allow-list
	// is configured.
	DefaultAgent string `yaml:"default_agent"`

	// AllowedModels is the model allow-list exposed via GET /models.
	// Requested model names are fuzzy-matched against it. An empty list
	// disables allow-list checking.
	AllowedModels []string `yaml:"allowed_models"`

	// SimilarityThreshold is the minimum fuzzy-match score (0..1) for a
	// name to be considered a match.
	// Default: 0.7
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	// AgentCacheTTL bounds how long the upstream agent catalog is cached.
	// Default: 60s
	AgentCacheTTL time.Duration `yaml:"agent_cache_ttl"`
}

// Conversation store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// ConversationConfig contains conversation session store configuration.
type ConversationConfig struct {
	// Backend selects the session store implementation: "memory" or
	// "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// TTL is how long a session survives without activity.
	// Default: 24h
	TTL time.Duration `yaml:"ttl"`

	// SweepSchedule is a cron expression for the periodic expiry sweep.
	// Default: "0 * * * *" (hourly)
	SweepSchedule string `yaml:"sweep_schedule"`

	// SQLitePath is the database file path for the sqlite backend.
	// Default: "data/sessions.db"
	SQLitePath string `yaml:"sqlite_path"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether /metrics is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the prometheus metric namespace.
	// Default: "triton"
	Namespace string `yaml:"namespace"`
}
