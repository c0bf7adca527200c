package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maximhq/geminiproxy/schemas"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv makes sure the host environment does not leak into a test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k.env, "")
		os.Unsetenv(k.env)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, schemas.DefaultAPIKeyEnv, config.APIKeyEnv)
	assert.Equal(t, schemas.DefaultGeminiBaseURL, config.BaseURL)
	assert.Equal(t, schemas.DefaultGeminiModel, config.Model)
	assert.Equal(t, 0, config.RequestTimeout)
	assert.Equal(t, schemas.DefaultMaxConnsPerHost, config.MaxConnsPerHost)
	assert.Equal(t, "none", config.ProxyType)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "json", config.LogStyle)
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, "8888", config.Port)
	assert.False(t, config.MaximEnabled())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("GEMINI_REQUEST_TIMEOUT", "9")
	t.Setenv("GEMINI_PROXY_TYPE", "HTTP")
	t.Setenv("GEMINI_PROXY_URL", "http://proxy.local:3128")
	t.Setenv("LOG_LEVEL", "Debug")
	t.Setenv("MAXIM_API_KEY", "mx-key")
	t.Setenv("MAXIM_LOGGER_ID", "repo")
	t.Setenv("PORT", "9090")

	config, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", config.Model)
	assert.Equal(t, 9, config.RequestTimeout)
	assert.Equal(t, "http", config.ProxyType)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "9090", config.Port)
	assert.True(t, config.MaximEnabled())

	providerConfig := config.ToProviderConfig()
	assert.Equal(t, "gemini-test", providerConfig.Model)
	assert.Equal(t, 9, providerConfig.NetworkConfig.RequestTimeoutInSeconds)
	require.NotNil(t, providerConfig.ProxyConfig)
	assert.Equal(t, schemas.HttpProxy, providerConfig.ProxyConfig.Type)
	assert.Equal(t, "http://proxy.local:3128", providerConfig.ProxyConfig.URL)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_MODEL=from-dotenv\nLOG_STYLE=pretty\n"), 0o600))
	t.Setenv("LOG_STYLE", "json")

	config, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", config.Model)
	// Variables already set win over the file.
	assert.Equal(t, "json", config.LogStyle)
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Model:     "gemini-test",
			LogLevel:  "info",
			LogStyle:  "json",
			ProxyType: "none",
			Port:      "8888",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"unknown log style", func(c *Config) { c.LogStyle = "xml" }},
		{"unknown proxy type", func(c *Config) { c.ProxyType = "tor" }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -1 }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"non numeric port", func(c *Config) { c.Port = "http" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := LoadConfig(NewViper(), "")
	assert.Error(t, err)
}

func TestToProviderConfig_NoProxy(t *testing.T) {
	config := &Config{Model: "m", ProxyType: "none"}
	assert.Nil(t, config.ToProviderConfig().ProxyConfig)
}

func TestNewProxy_WiresTelemetry(t *testing.T) {
	clearConfigEnv(t)
	config, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	config.LogLevel = "error"

	registry := prometheus.NewRegistry()
	plugins, err := LoadPlugins(config, NewLogger(config), registry)
	require.NoError(t, err)
	require.Len(t, plugins, 1)
	assert.Equal(t, "telemetry", plugins[0].GetName())

	proxy, err := NewProxy(config, NewLogger(config), registry)
	require.NoError(t, err)
	assert.NotNil(t, proxy)
}
