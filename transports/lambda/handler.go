package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bytedance/sonic"
	"github.com/maximhq/geminiproxy/schemas"
)

// invocationHandler is the part of the proxy the Lambda handler needs.
type invocationHandler interface {
	Handle(ctx context.Context, req *schemas.InboundRequest) *schemas.OutboundResponse
}

// Handler adapts API Gateway proxy events, which Netlify functions share, to the proxy.
type Handler struct {
	proxy  invocationHandler
	logger schemas.Logger
}

// NewHandler creates a Handler around proxy.
func NewHandler(proxy invocationHandler, logger schemas.Logger) *Handler {
	return &Handler{proxy: proxy, logger: logger}
}

// HandleRequest is the function registered with lambda.Start.
// It never returns an error: every outcome is an HTTP response.
func (h *Handler) HandleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := event.Body
	// Only POST bodies are read; any other method is answered by the proxy without one.
	if event.IsBase64Encoded && event.HTTPMethod == http.MethodPost {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.logger.Error("error decoding base64 request body: %v", err)
			return toEvent(errorResponse(http.StatusInternalServerError, err.Error())), nil
		}
		body = string(decoded)
	}

	resp := h.proxy.Handle(ctx, &schemas.InboundRequest{
		Method: event.HTTPMethod,
		Body:   body,
	})

	return toEvent(resp), nil
}

func toEvent(resp *schemas.OutboundResponse) events.APIGatewayProxyResponse {
	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
	if len(resp.Headers) > 0 {
		out.Headers = make(map[string]string, len(resp.Headers))
		for k, v := range resp.Headers {
			out.Headers[k] = v
		}
	}
	return out
}

func errorResponse(statusCode int, message string) *schemas.OutboundResponse {
	body, err := sonic.MarshalString(schemas.ErrorBody{Error: message})
	if err != nil {
		body = fmt.Sprintf(`{"error":%q}`, message)
	}
	return schemas.NewTextResponse(statusCode, body)
}
