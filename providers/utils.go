// Package providers implements the upstream provider and its utility functions.
// This file contains common utility functions used by the provider implementation.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
)

// configureProxy sets up a proxy for the fasthttp client based on the provided configuration.
// It supports HTTP, SOCKS5, and environment-based proxy configurations.
// Returns the client unchanged if the proxy configuration is invalid.
func configureProxy(client *fasthttp.Client, proxyConfig *schemas.OutboundProxyConfig, logger schemas.Logger) *fasthttp.Client {
	if proxyConfig == nil {
		return client
	}

	var dialFunc fasthttp.DialFunc

	switch proxyConfig.Type {
	case schemas.NoProxy, "":
		return client
	case schemas.HttpProxy:
		if proxyConfig.URL == "" {
			logger.Warn("http proxy url is required for setting up proxy")
			return client
		}
		dialFunc = fasthttpproxy.FasthttpHTTPDialer(proxyURLWithCredentials(proxyConfig, logger))
	case schemas.Socks5Proxy:
		if proxyConfig.URL == "" {
			logger.Warn("socks5 proxy url is required for setting up proxy")
			return client
		}
		dialFunc = fasthttpproxy.FasthttpSocksDialer(proxyURLWithCredentials(proxyConfig, logger))
	case schemas.EnvProxy:
		dialFunc = fasthttpproxy.FasthttpProxyHTTPDialer()
	default:
		logger.Warn("invalid proxy configuration: unsupported proxy type: %s", proxyConfig.Type)
		return client
	}

	if dialFunc != nil {
		client.Dial = dialFunc
	}

	return client
}

// proxyURLWithCredentials embeds username and password into the proxy URL when both are set.
func proxyURLWithCredentials(proxyConfig *schemas.OutboundProxyConfig, logger schemas.Logger) string {
	if proxyConfig.Username == "" || proxyConfig.Password == "" {
		return proxyConfig.URL
	}
	parsedURL, err := url.Parse(proxyConfig.URL)
	if err != nil {
		logger.Warn("invalid proxy configuration: could not parse proxy url, using it without credentials")
		return proxyConfig.URL
	}
	parsedURL.User = url.UserPassword(proxyConfig.Username, proxyConfig.Password)
	return parsedURL.String()
}

// makeRequestWithContext performs the request, bounded by the context deadline when one is set.
// The context is not watched for cancellation: once sent, the request runs to completion.
func makeRequestWithContext(ctx context.Context, client *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response) (time.Duration, *schemas.ProxyError) {
	startTime := time.Now()

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		err = client.Do(req, resp)
	}
	latency := time.Since(startTime)

	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
			return latency, schemas.NewProxyOperationError(schemas.ErrProviderRequestTimedOut, err)
		}
		return latency, schemas.NewProxyOperationError(schemas.ErrProviderRequest, err)
	}

	return latency, nil
}

// statusText returns the reason phrase the upstream sent, or the canonical one for the code.
func statusText(resp *fasthttp.Response) string {
	if message := resp.Header.StatusMessage(); len(message) > 0 {
		return string(message)
	}
	return fasthttp.StatusMessage(resp.StatusCode())
}

// isSuccessStatus mirrors fetch's Response.ok.
func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// validateJSONBody checks that a successful upstream body is valid JSON without re-encoding it.
func validateJSONBody(body []byte) *schemas.ProxyError {
	var parsed any
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return schemas.NewProxyOperationError(schemas.ErrProviderResponseUnmarshal, err)
	}
	return nil
}

// summarizeUpstreamError pulls the status and message out of a Gemini error body for log lines.
// Gemini errors look like {"error":{"code":429,"message":"...","status":"RESOURCE_EXHAUSTED"}}.
func summarizeUpstreamError(body []byte) string {
	if !gjson.ValidBytes(body) {
		return string(body)
	}
	result := gjson.GetManyBytes(body, "error.status", "error.message")
	status, message := result[0].String(), result[1].String()
	switch {
	case status != "" && message != "":
		return fmt.Sprintf("%s: %s", status, message)
	case message != "":
		return message
	default:
		return string(body)
	}
}
