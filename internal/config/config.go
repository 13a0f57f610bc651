package config

import "time"

// Config is the complete keap-mcp configuration. Values are layered as
// built-in defaults, then the YAML config file, then KEAP_MCP_* environment
// variables, then runtime overrides from command flags.
type Config struct {
	Keap    KeapConfig    `mapstructure:"keap"`
	MCP     MCPConfig     `mapstructure:"mcp"`
	Server  ServerConfig  `mapstructure:"server"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Debug   DebugConfig   `mapstructure:"debug"`
}

// KeapConfig configures the Keap REST client.
type KeapConfig struct {
	// AccessToken is sent as a Bearer token. Falls back to KEAP_ACCESS_TOKEN.
	AccessToken string `mapstructure:"access_token"`
	// APIKey is sent as X-Keap-API-Key. Falls back to KEAP_API_KEY.
	APIKey string `mapstructure:"api_key"`

	BaseURL   string        `mapstructure:"base_url"`
	BaseURLV2 string        `mapstructure:"base_url_v2"`
	Timeout   time.Duration `mapstructure:"timeout"`

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// PageLimit is the page size used when walking every page of a listing.
	PageLimit int `mapstructure:"page_limit"`

	Retry RetryConfig `mapstructure:"retry"`
}

// HasCredentials reports whether a token or API key is configured.
func (k KeapConfig) HasCredentials() bool {
	return k.AccessToken != "" || k.APIKey != ""
}

// RetryConfig controls retries of transient Keap failures. MaxRetries of
// zero disables retrying.
type RetryConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
}

// MCPConfig selects how the tool server is exposed.
type MCPConfig struct {
	// Transport is "stdio" or "http".
	Transport string `mapstructure:"transport"`
	// Path is the HTTP mount point of the streamable transport.
	Path string `mapstructure:"path"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuditConfig contains the libsql/Turso tool-call audit store settings.
type AuditConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Driver    string        `mapstructure:"driver"`
	Path      string        `mapstructure:"path"`
	URL       string        `mapstructure:"url"`
	AuthToken string        `mapstructure:"auth_token"`
	Retention time.Duration `mapstructure:"retention"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated Prometheus endpoint port
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig contains debug and profiling configuration
type DebugConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// PprofEnabled controls whether pprof endpoints are exposed
	// WARNING: Only enable in development/staging environments
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}
