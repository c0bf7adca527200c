// Package lib holds the configuration and wiring shared by the proxy's transports.
package lib

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/spf13/viper"
)

// Config is the process-level configuration of a transport.
// The upstream credential is not part of it, only the name of the variable holding it.
type Config struct {
	APIKeyEnv       string `mapstructure:"api_key_env"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	MaxConnsPerHost int    `mapstructure:"max_conns_per_host"`

	ProxyType     string `mapstructure:"proxy_type"`
	ProxyURL      string `mapstructure:"proxy_url"`
	ProxyUsername string `mapstructure:"proxy_username"`
	ProxyPassword string `mapstructure:"proxy_password"`

	LogLevel string `mapstructure:"log_level"`
	LogStyle string `mapstructure:"log_style"`

	MaximAPIKey   string `mapstructure:"maxim_api_key"`
	MaximLoggerID string `mapstructure:"maxim_logger_id"`

	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// configKey ties a viper key to its environment variable and default.
type configKey struct {
	key      string
	env      string
	fallback any
}

var configKeys = []configKey{
	{"api_key_env", "GEMINI_API_KEY_ENV", schemas.DefaultAPIKeyEnv},
	{"base_url", "GEMINI_BASE_URL", schemas.DefaultGeminiBaseURL},
	{"model", "GEMINI_MODEL", schemas.DefaultGeminiModel},
	{"request_timeout", "GEMINI_REQUEST_TIMEOUT", schemas.DefaultRequestTimeoutInSecs},
	{"max_conns_per_host", "GEMINI_MAX_CONNS_PER_HOST", schemas.DefaultMaxConnsPerHost},
	{"proxy_type", "GEMINI_PROXY_TYPE", string(schemas.NoProxy)},
	{"proxy_url", "GEMINI_PROXY_URL", ""},
	{"proxy_username", "GEMINI_PROXY_USERNAME", ""},
	{"proxy_password", "GEMINI_PROXY_PASSWORD", ""},
	{"log_level", "LOG_LEVEL", string(schemas.LogLevelInfo)},
	{"log_style", "LOG_STYLE", string(schemas.LoggerOutputTypeJSON)},
	{"maxim_api_key", "MAXIM_API_KEY", ""},
	{"maxim_logger_id", "MAXIM_LOGGER_ID", ""},
	{"host", "HOST", "localhost"},
	{"port", "PORT", "8888"},
}

// NewViper returns a viper instance with every key bound to its environment variable and default.
func NewViper() *viper.Viper {
	v := viper.New()
	for _, k := range configKeys {
		v.SetDefault(k.key, k.fallback)
		// BindEnv only fails when no key is given.
		_ = v.BindEnv(k.key, k.env)
	}
	return v
}

// LoadEnvFile loads variables from a dotenv file without overriding ones already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads envFile, reads the configuration from v and validates it.
func LoadConfig(v *viper.Viper, envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config *Config) normalize() {
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.LogStyle = strings.ToLower(strings.TrimSpace(config.LogStyle))
	config.ProxyType = strings.ToLower(strings.TrimSpace(config.ProxyType))
	config.Model = strings.TrimSpace(config.Model)
	if config.APIKeyEnv == "" {
		config.APIKeyEnv = schemas.DefaultAPIKeyEnv
	}
}

// Validate rejects values the proxy cannot start with.
func (config *Config) Validate() error {
	switch schemas.LogLevel(config.LogLevel) {
	case schemas.LogLevelDebug, schemas.LogLevelInfo, schemas.LogLevelWarn, schemas.LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q", config.LogLevel)
	}

	switch schemas.LoggerOutputType(config.LogStyle) {
	case schemas.LoggerOutputTypeJSON, schemas.LoggerOutputTypePretty:
	default:
		return fmt.Errorf("invalid log style %q", config.LogStyle)
	}

	switch schemas.ProxyType(config.ProxyType) {
	case schemas.NoProxy, schemas.HttpProxy, schemas.Socks5Proxy, schemas.EnvProxy:
	default:
		return fmt.Errorf("invalid proxy type %q", config.ProxyType)
	}

	if config.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %d", config.RequestTimeout)
	}

	if config.Model == "" {
		return errors.New("model is required")
	}

	if config.Port != "" {
		port, err := strconv.Atoi(config.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", config.Port)
		}
	}

	return nil
}

// ToProviderConfig converts the configuration into the provider's settings.
func (config *Config) ToProviderConfig() schemas.ProviderConfig {
	providerConfig := schemas.ProviderConfig{
		Model: config.Model,
		NetworkConfig: schemas.NetworkConfig{
			BaseURL:                 config.BaseURL,
			RequestTimeoutInSeconds: config.RequestTimeout,
			MaxConnsPerHost:         config.MaxConnsPerHost,
		},
	}
	if schemas.ProxyType(config.ProxyType) != schemas.NoProxy {
		providerConfig.ProxyConfig = &schemas.OutboundProxyConfig{
			Type:     schemas.ProxyType(config.ProxyType),
			URL:      config.ProxyURL,
			Username: config.ProxyUsername,
			Password: config.ProxyPassword,
		}
	}
	return providerConfig
}

// MaximEnabled reports whether both Maxim settings are present.
func (config *Config) MaximEnabled() bool {
	return config.MaximAPIKey != "" && config.MaximLoggerID != ""
}
