// Package providers implements the upstream provider and its utility functions.
// This file contains the Gemini provider implementation.
package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/valyala/fasthttp"
)

// GeminiProvider sends prompts to the Gemini generateContent endpoint.
type GeminiProvider struct {
	logger        schemas.Logger        // Logger for provider operations
	client        *fasthttp.Client      // HTTP client for API requests
	networkConfig schemas.NetworkConfig // Network configuration
	model         string                // Model id used in the request path
}

// NewGeminiProvider creates a new Gemini provider instance.
// Timeouts are only set when configured; otherwise the invocation deadline is the only bound.
func NewGeminiProvider(config *schemas.ProviderConfig, logger schemas.Logger) *GeminiProvider {
	config.CheckAndSetDefaults()

	client := &fasthttp.Client{
		MaxConnsPerHost: config.NetworkConfig.MaxConnsPerHost,
	}
	if timeout := config.NetworkConfig.RequestTimeoutInSeconds; timeout > 0 {
		client.ReadTimeout = time.Second * time.Duration(timeout)
		client.WriteTimeout = time.Second * time.Duration(timeout)
	}

	// Configure proxy if provided
	client = configureProxy(client, config.ProxyConfig, logger)

	config.NetworkConfig.BaseURL = strings.TrimRight(config.NetworkConfig.BaseURL, "/")

	return &GeminiProvider{
		logger:        logger,
		client:        client,
		networkConfig: config.NetworkConfig,
		model:         config.Model,
	}
}

// Model returns the model id requests are sent to.
func (provider *GeminiProvider) Model() string {
	return provider.model
}

// generateContentURL builds the endpoint URL. The key travels as a query parameter,
// so the returned string is secret and must never be logged.
func (provider *GeminiProvider) generateContentURL(key string) string {
	return provider.networkConfig.BaseURL + "/models/" + provider.model + ":generateContent?key=" + url.QueryEscape(key)
}

// GenerateContent sends one prompt upstream and returns the raw reply.
// A non-2xx reply is returned as a ProxyError with IsProxyError=false, carrying the
// upstream status code, status text and body.
func (provider *GeminiProvider) GenerateContent(ctx context.Context, key string, prompt string) (*schemas.GeminiResponse, *schemas.ProxyError) {
	jsonBody, err := sonic.Marshal(schemas.NewGeminiGenerateContentRequest(prompt))
	if err != nil {
		return nil, schemas.NewProxyOperationError(schemas.ErrProviderJSONMarshaling, err)
	}

	// Create request
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(provider.generateContentURL(key))
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType(schemas.ContentTypeJSON)
	req.SetBody(jsonBody)

	latency, proxyErr := makeRequestWithContext(ctx, provider.client, req, resp)
	if proxyErr != nil {
		return nil, proxyErr
	}

	// The response is released on return, so the body has to be copied out.
	body := append([]byte(nil), resp.Body()...)
	statusCode := resp.StatusCode()

	if !isSuccessStatus(statusCode) {
		return nil, schemas.NewUpstreamError(statusCode, statusText(resp), body)
	}

	if proxyErr := validateJSONBody(body); proxyErr != nil {
		return nil, proxyErr
	}

	provider.logger.Debug("gemini responded %d in %dms", statusCode, latency.Milliseconds())

	return &schemas.GeminiResponse{
		StatusCode: statusCode,
		StatusText: statusText(resp),
		Body:       body,
		Latency:    latency,
	}, nil
}

// DescribeUpstreamError renders a non-2xx upstream body for diagnostics.
func DescribeUpstreamError(proxyErr *schemas.ProxyError) string {
	if proxyErr == nil || len(proxyErr.RawBody) == 0 {
		return ""
	}
	return summarizeUpstreamError(proxyErr.RawBody)
}
