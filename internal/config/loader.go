// Package config loads keap-mcp configuration through viper and decodes it
// into typed structs with mapstructure.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// Application naming used for config, data and env lookups.
const (
	AppName   = "keap-mcp"
	EnvPrefix = "KEAP_MCP"

	// Unprefixed credential variables honored for compatibility with other
	// Keap tooling.
	EnvAccessToken = "KEAP_ACCESS_TOKEN"
	EnvAPIKey      = "KEAP_API_KEY"
)

// Transports accepted by mcp.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// Keap client defaults
	v.SetDefault("keap.access_token", "")
	v.SetDefault("keap.api_key", "")
	v.SetDefault("keap.base_url", "https://api.infusionsoft.com/crm/rest/v1")
	v.SetDefault("keap.base_url_v2", "https://api.infusionsoft.com/crm/rest/v2")
	v.SetDefault("keap.timeout", "30s")
	v.SetDefault("keap.requests_per_second", 0)
	v.SetDefault("keap.page_limit", 200)
	v.SetDefault("keap.retry.max_retries", 0)
	v.SetDefault("keap.retry.initial_interval", "500ms")
	v.SetDefault("keap.retry.max_interval", "10s")

	// MCP defaults
	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.path", "/mcp")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.driver", "libsql")
	v.SetDefault("audit.path", DefaultAuditPath())
	v.SetDefault("audit.url", "")
	v.SetDefault("audit.auth_token", "")
	v.SetDefault("audit.retention", "720h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)
}

// BindEnv maps KEAP_MCP_<SECTION>_<KEY> variables onto config keys. The Keap
// credentials also accept the unprefixed KEAP_ACCESS_TOKEN and KEAP_API_KEY.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("keap.access_token", EnvPrefix+"_KEAP_ACCESS_TOKEN", EnvAccessToken)
	_ = v.BindEnv("keap.api_key", EnvPrefix+"_KEAP_API_KEY", EnvAPIKey)
}

// NewViper returns a viper instance with defaults and environment bindings
// but no config file.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

// Load decodes the process-wide viper instance, which the root command has
// already pointed at the config file and environment.
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	return LoadFrom(ctx, viper.GetViper(), runtimeOverrides...)
}

// LoadFrom decodes v into a Config, applying runtimeOverrides (keyed by
// dotted config path) on top.
func LoadFrom(_ context.Context, v *viper.Viper, runtimeOverrides ...map[string]any) (*Config, error) {
	for _, overrides := range runtimeOverrides {
		for key, value := range overrides {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.MCP.Transport = strings.ToLower(strings.TrimSpace(cfg.MCP.Transport))
	if strings.TrimSpace(cfg.Audit.URL) == "" && strings.TrimSpace(cfg.Audit.Path) == "" {
		cfg.Audit.Path = DefaultAuditPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.MCP.Transport {
	case TransportStdio, TransportHTTP:
	default:
		result = multierror.Append(result, fmt.Errorf("mcp.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.MCP.Transport))
	}
	if c.MCP.Transport == TransportHTTP && !strings.HasPrefix(c.MCP.Path, "/") {
		result = multierror.Append(result, errors.New("mcp.path must start with /"))
	}
	if c.Keap.Timeout <= 0 {
		result = multierror.Append(result, errors.New("keap.timeout must be positive"))
	}
	if c.Keap.RequestsPerSecond < 0 {
		result = multierror.Append(result, errors.New("keap.requests_per_second must not be negative"))
	}
	if c.Keap.PageLimit < 1 {
		result = multierror.Append(result, errors.New("keap.page_limit must be at least 1"))
	}
	if c.Keap.Retry.MaxRetries < 0 {
		result = multierror.Append(result, errors.New("keap.retry.max_retries must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// ConfigSearchPaths returns the directories searched for config.yaml, most
// specific first.
func ConfigSearchPaths() []string {
	var paths []string
	if dir := gfconfig.GetAppConfigDir(AppName); strings.TrimSpace(dir) != "" {
		paths = append(paths, dir)
	}
	return append(paths, "./config")
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(AppName)
}

// DefaultAuditPath returns the XDG-compliant path to the audit database.
func DefaultAuditPath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}

// ReadConfigFile points v at path, or searches the default locations when
// path is empty. A missing file in the default locations is not an error.
func ReadConfigFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		for _, dir := range ConfigSearchPaths() {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}
