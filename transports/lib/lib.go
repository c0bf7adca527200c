package lib

import (
	"fmt"

	geminiproxy "github.com/maximhq/geminiproxy"
	"github.com/maximhq/geminiproxy/plugins/maxim"
	"github.com/maximhq/geminiproxy/plugins/telemetry"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/prometheus/client_golang/prometheus"
)

// NewLogger builds the default logger at the configured level and style.
func NewLogger(config *Config) schemas.Logger {
	logger := geminiproxy.NewDefaultLogger(schemas.LogLevel(config.LogLevel))
	logger.SetOutputType(schemas.LoggerOutputType(config.LogStyle))
	return logger
}

// LoadPlugins builds the plugins enabled by config.
// Telemetry is always on. Maxim is added only when both of its settings are present;
// a failure to reach Maxim is logged and the proxy starts without it.
func LoadPlugins(config *Config, logger schemas.Logger, registerer prometheus.Registerer) ([]schemas.Plugin, error) {
	telemetryPlugin, err := telemetry.Init(registerer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry plugin: %w", err)
	}
	plugins := []schemas.Plugin{telemetryPlugin}

	if config.MaximEnabled() {
		maximPlugin, err := maxim.Init(&maxim.Config{
			APIKey:    config.MaximAPIKey,
			LogRepoID: config.MaximLoggerID,
		}, logger)
		if err != nil {
			logger.Warn("maxim plugin disabled: %v", err)
		} else {
			plugins = append(plugins, maximPlugin)
		}
	}

	return plugins, nil
}

// NewProxy wires a Proxy from config: the environment-backed account, the plugins and the logger.
func NewProxy(config *Config, logger schemas.Logger, registerer prometheus.Registerer) (*geminiproxy.Proxy, error) {
	plugins, err := LoadPlugins(config, logger, registerer)
	if err != nil {
		return nil, err
	}

	return geminiproxy.Init(schemas.ProxyConfig{
		Account:        geminiproxy.NewEnvAccount(config.APIKeyEnv),
		ProviderConfig: config.ToProviderConfig(),
		Plugins:        plugins,
		Logger:         logger,
	})
}
