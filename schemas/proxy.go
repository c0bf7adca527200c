// Package schemas defines the core types shared by the proxy, its provider and its transports.
package schemas

import "net/http"

// InboundRequest is the transport-independent view of one invocation.
type InboundRequest struct {
	Method string
	Body   string // serialized JSON as received
}

// PromptPayload is the body clients are expected to send.
type PromptPayload struct {
	Prompt string `json:"prompt"`
}

// OutboundResponse is produced exactly once per invocation.
type OutboundResponse struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

// ErrorBody is the JSON shape of every error returned to callers, except for 405.
type ErrorBody struct {
	Error string `json:"error"`
}

// ContentTypeJSON is the only content type the proxy ever sets explicitly.
const ContentTypeJSON = "application/json"

// NewTextResponse builds a response with a plain body and no headers.
func NewTextResponse(statusCode int, body string) *OutboundResponse {
	return &OutboundResponse{
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewJSONResponse builds a successful response carrying an already-serialized JSON body.
func NewJSONResponse(body string) *OutboundResponse {
	return &OutboundResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": ContentTypeJSON},
		Body:       body,
	}
}

// MethodNotAllowed is the response for anything that is not a POST.
func MethodNotAllowed() *OutboundResponse {
	return NewTextResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
}
