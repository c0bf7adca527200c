// Package maxim provides integration for Maxim's SDK as a proxy plugin.
// Every invocation becomes one Maxim trace: the inbound body is recorded as
// the trace input and the outbound body as its output.
package maxim

import (
	"context"
	"fmt"

	"github.com/maximhq/geminiproxy/schemas"
	"github.com/maximhq/maxim-go"
	"github.com/maximhq/maxim-go/logging"
)

// PluginName is the name reported by GetName.
const PluginName = "maxim"

// TraceName is the name given to every trace created by the plugin.
const TraceName = "gemini-proxy"

// Config holds the Maxim credentials.
type Config struct {
	APIKey    string `json:"api_key"`
	LogRepoID string `json:"log_repo_id"`
}

// Plugin records invocations as Maxim traces.
type Plugin struct {
	startTrace func(traceID string, input string)
	setOutput  func(traceID string, output string)
	flush      func()
	logger     schemas.Logger
}

// Init creates a Maxim logger for the given log repository and wraps it in a plugin.
func Init(config *Config, logger schemas.Logger) (schemas.Plugin, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("maxim api key is required")
	}
	if config.LogRepoID == "" {
		return nil, fmt.Errorf("maxim log repo id is required")
	}

	mx := maxim.Init(&maxim.MaximSDKConfig{ApiKey: config.APIKey})
	maximLogger, err := mx.GetLogger(&logging.LoggerConfig{Id: config.LogRepoID})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize maxim logger: %w", err)
	}

	startTrace := func(traceID string, input string) {
		trace := maximLogger.Trace(&logging.TraceConfig{
			Id:   traceID,
			Name: maxim.StrPtr(TraceName),
		})
		trace.SetInput(input)
	}

	setOutput := func(traceID string, output string) {
		maximLogger.SetTraceOutput(traceID, output)
	}

	logger.Debug("maxim tracing enabled for log repo %s", config.LogRepoID)

	return &Plugin{
		startTrace: startTrace,
		setOutput:  setOutput,
		flush:      maximLogger.Flush,
		logger:     logger,
	}, nil
}

// GetName returns the plugin name.
func (plugin *Plugin) GetName() string {
	return PluginName
}

// PreHook opens a trace keyed by the invocation's request id.
func (plugin *Plugin) PreHook(ctx *context.Context, req *schemas.InboundRequest) error {
	traceID, err := requestID(ctx)
	if err != nil {
		return err
	}
	var input string
	if req != nil {
		input = req.Body
	}
	plugin.startTrace(traceID, input)
	return nil
}

// PostHook closes the trace with the response body.
func (plugin *Plugin) PostHook(ctx *context.Context, resp *schemas.OutboundResponse) error {
	traceID, err := requestID(ctx)
	if err != nil {
		return err
	}
	if resp == nil {
		return fmt.Errorf("no response to record for trace %s", traceID)
	}
	plugin.setOutput(traceID, resp.Body)
	plugin.logger.Debug("maxim trace %s closed with status %d", traceID, resp.StatusCode)
	return nil
}

// Cleanup flushes pending traces to Maxim.
func (plugin *Plugin) Cleanup() error {
	if plugin.flush != nil {
		plugin.flush()
	}
	return nil
}

func requestID(ctx *context.Context) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is nil")
	}
	traceID, ok := (*ctx).Value(schemas.ProxyContextKeyRequestID).(string)
	if !ok || traceID == "" {
		return "", fmt.Errorf("request id not found in context")
	}
	return traceID, nil
}
