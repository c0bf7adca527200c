// Package geminiproxy provides the core implementation of the Gemini proxy.
package geminiproxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/maximhq/geminiproxy/providers"
	"github.com/maximhq/geminiproxy/schemas"
)

// Proxy turns one inbound request into at most one Gemini call and relays the result.
// It holds only read-only configuration and is safe for concurrent use.
type Proxy struct {
	account  schemas.Account
	provider *providers.GeminiProvider
	plugins  []schemas.Plugin
	logger   schemas.Logger
}

// Init builds a Proxy from the given configuration.
func Init(config schemas.ProxyConfig) (*Proxy, error) {
	if config.Account == nil {
		return nil, fmt.Errorf("account is required to initialize the proxy")
	}

	if config.Logger == nil {
		config.Logger = NewDefaultLogger(schemas.LogLevelInfo)
	}

	proxy := &Proxy{
		account:  config.Account,
		plugins:  config.Plugins,
		logger:   config.Logger,
		provider: providers.NewGeminiProvider(&config.ProviderConfig, config.Logger),
	}

	proxy.logger.Debug("gemini proxy initialized for model %s", proxy.provider.Model())

	return proxy, nil
}

// Handle runs one invocation. It always returns a response and never panics.
func (proxy *Proxy) Handle(ctx context.Context, req *schemas.InboundRequest) (resp *schemas.OutboundResponse) {
	if req == nil {
		req = &schemas.InboundRequest{}
	}

	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, schemas.ProxyContextKeyRequestID, requestID)

	// key is captured so that panics and errors raised after the lookup can be redacted.
	var key string

	defer func() {
		proxy.runPostHooks(&ctx, resp)
	}()
	defer func() {
		if r := recover(); r != nil {
			proxy.logger.Error("proxy error (request %s): panic: %v\n%s", requestID, r, debug.Stack())
			resp = proxy.internalError(requestID, fmt.Sprintf("%v", r), key)
		}
	}()

	proxy.runPreHooks(&ctx, req)

	if req.Method != http.MethodPost {
		return schemas.MethodNotAllowed()
	}

	payload, proxyErr := parsePromptPayload(req.Body)
	if proxyErr != nil {
		return proxy.internalError(requestID, proxyErr.Cause(), "")
	}

	key, err := proxy.account.GetKey(ctx)
	if err != nil {
		return proxy.internalError(requestID, err.Error(), key)
	}

	if payload.Prompt == "" {
		return jsonErrorResponse(http.StatusBadRequest, schemas.ErrPromptRequired)
	}

	if key == "" {
		// Diagnostic for whoever deploys the function; callers only get the generic message.
		proxy.logger.Error("%s environment variable not set.", proxy.account.KeyName())
		return jsonErrorResponse(http.StatusInternalServerError, schemas.ErrAPIKeyNotConfigured)
	}

	geminiResponse, proxyErr := proxy.provider.GenerateContent(ctx, key, payload.Prompt)
	if proxyErr != nil {
		if proxyErr.IsProxyError {
			return proxy.internalError(requestID, proxyErr.Cause(), key)
		}
		proxy.logger.Error("gemini api error (request %s): status %d: %s",
			requestID, proxyErr.Status(), redactKey(string(proxyErr.RawBody), key))
		if summary := providers.DescribeUpstreamError(proxyErr); summary != "" {
			proxy.logger.Debug("gemini api error summary (request %s): %s", requestID, redactKey(summary, key))
		}
		return jsonErrorResponse(proxyErr.Status(), proxyErr.Error.Message)
	}

	proxy.logger.Debug("relaying gemini response (request %s, %dms)", requestID, geminiResponse.Latency.Milliseconds())

	return schemas.NewJSONResponse(string(geminiResponse.Body))
}

// Cleanup releases plugin resources.
func (proxy *Proxy) Cleanup() {
	for _, plugin := range proxy.plugins {
		if err := plugin.Cleanup(); err != nil {
			proxy.logger.Warn("error cleaning up plugin %s: %v", plugin.GetName(), err)
		}
	}
}

// internalError is the catch-all: 500 with the raw error text, minus the credential.
func (proxy *Proxy) internalError(requestID string, message string, key string) *schemas.OutboundResponse {
	message = redactKey(message, key)
	proxy.logger.Error("proxy error (request %s): %s", requestID, message)
	return jsonErrorResponse(http.StatusInternalServerError, message)
}

func (proxy *Proxy) runPreHooks(ctx *context.Context, req *schemas.InboundRequest) {
	for _, plugin := range proxy.plugins {
		proxy.callHook(plugin, "PreHook", func() error {
			return plugin.PreHook(ctx, req)
		})
	}
}

func (proxy *Proxy) runPostHooks(ctx *context.Context, resp *schemas.OutboundResponse) {
	// Run in reverse order, as in a middleware stack.
	for i := len(proxy.plugins) - 1; i >= 0; i-- {
		plugin := proxy.plugins[i]
		proxy.callHook(plugin, "PostHook", func() error {
			return plugin.PostHook(ctx, resp)
		})
	}
}

// callHook runs one plugin hook. Errors and panics are logged and never reach the caller.
func (proxy *Proxy) callHook(plugin schemas.Plugin, stage string, hook func() error) {
	defer func() {
		if r := recover(); r != nil {
			proxy.logger.Warn("panic in %s for plugin %s: %v", stage, plugin.GetName(), r)
		}
	}()
	if err := hook(); err != nil {
		proxy.logger.Warn("error in %s for plugin %s: %v", stage, plugin.GetName(), err)
	}
}

// parsePromptPayload reads the prompt out of the body.
// Any JSON value is accepted; only objects can carry a prompt. A falsy prompt
// (false, 0) counts as missing, any other non-string prompt is an error.
func parsePromptPayload(body string) (*schemas.PromptPayload, *schemas.ProxyError) {
	if strings.TrimSpace(body) == "" {
		return nil, schemas.NewProxyOperationError(schemas.ErrRequestBodyEmpty, nil)
	}

	var parsed any
	if err := sonic.UnmarshalString(body, &parsed); err != nil {
		return nil, schemas.NewProxyOperationError("error decoding request body", err)
	}

	switch value := parsed.(type) {
	case nil:
		return nil, schemas.NewProxyOperationError(schemas.ErrRequestBodyNull, nil)
	case map[string]any:
		switch prompt := value["prompt"].(type) {
		case nil:
			return &schemas.PromptPayload{}, nil
		case string:
			return &schemas.PromptPayload{Prompt: prompt}, nil
		case bool:
			if !prompt {
				return &schemas.PromptPayload{}, nil
			}
		case float64:
			if prompt == 0 {
				return &schemas.PromptPayload{}, nil
			}
		}
		return nil, schemas.NewProxyOperationError(fmt.Sprintf("prompt must be a string, got %T", value["prompt"]), nil)
	default:
		return &schemas.PromptPayload{}, nil
	}
}

// jsonErrorResponse builds {"error": message} with the given status.
func jsonErrorResponse(statusCode int, message string) *schemas.OutboundResponse {
	body, err := sonic.MarshalString(schemas.ErrorBody{Error: message})
	if err != nil {
		body = fmt.Sprintf(`{"error":%q}`, message)
	}
	return schemas.NewTextResponse(statusCode, body)
}

// redactKey strips the key in both its raw and URL-encoded forms.
func redactKey(text string, key string) string {
	if key == "" {
		return text
	}
	text = schemas.Redact(text, key)
	if escaped := url.QueryEscape(key); escaped != key {
		text = schemas.Redact(text, escaped)
	}
	return text
}
