// Package handlers provides the HTTP handlers of the local development server.
package handlers

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/valyala/fasthttp"
)

var logger schemas.Logger

// SetLogger sets the logger used by the handlers.
func SetLogger(l schemas.Logger) {
	logger = l
}

// SendJSON sends a JSON response with 200 OK status
func SendJSON(ctx *fasthttp.RequestCtx, data any, logger schemas.Logger) {
	ctx.SetContentType(schemas.ContentTypeJSON)
	body, err := sonic.Marshal(data)
	if err != nil {
		logger.Warn("failed to encode JSON response: %v", err)
		SendError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), logger)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

// SendError sends an error response in the proxy's {"error": message} shape.
func SendError(ctx *fasthttp.RequestCtx, statusCode int, message string, logger schemas.Logger) {
	body, err := sonic.Marshal(schemas.ErrorBody{Error: message})
	if err != nil {
		logger.Warn("failed to encode error response: %v", err)
		body = []byte(fmt.Sprintf(`{"error":%q}`, message))
	}
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType(schemas.ContentTypeJSON)
	ctx.SetBody(body)
}

// writeResponse copies a proxy response onto the fasthttp response as is.
func writeResponse(ctx *fasthttp.RequestCtx, resp *schemas.OutboundResponse) {
	ctx.SetStatusCode(resp.StatusCode)
	for k, v := range resp.Headers {
		ctx.Response.Header.Set(k, v)
	}
	ctx.SetBodyString(resp.Body)
}
