package schemas

import (
	"fmt"
	"net/http"
)

// Caller-facing messages.
const (
	ErrPromptRequired      = "Prompt is required."
	ErrAPIKeyNotConfigured = "API key not configured on the server."
	ErrGeminiAPIPrefix     = "Gemini API returned an error: "
)

// Internal messages used as ErrorField.Message when wrapping lower level errors.
const (
	ErrProviderRequest           = "error making gemini request"
	ErrProviderJSONMarshaling    = "error marshaling gemini request"
	ErrProviderResponseUnmarshal = "error decoding gemini response"
	ErrProviderRequestTimedOut   = "gemini request timed out"
	ErrRequestBodyEmpty          = "unexpected end of JSON input"
	ErrRequestBodyNull           = "cannot read property 'prompt' of null"
)

// ProxyError is the error value passed between the provider and the proxy.
// IsProxyError is true for failures raised inside this process and false for
// non-2xx answers from the upstream API.
type ProxyError struct {
	IsProxyError bool       `json:"is_proxy_error"`
	StatusCode   *int       `json:"status_code,omitempty"`
	StatusText   string     `json:"status_text,omitempty"`
	RawBody      []byte     `json:"-"`
	Error        ErrorField `json:"error"`
}

// ErrorField carries the message and the underlying cause, if any.
type ErrorField struct {
	Type    *string `json:"type,omitempty"`
	Message string  `json:"message"`
	Error   error   `json:"-"`
}

// NewProxyOperationError wraps an internal failure.
func NewProxyOperationError(message string, err error) *ProxyError {
	return &ProxyError{
		IsProxyError: true,
		Error: ErrorField{
			Message: message,
			Error:   err,
		},
	}
}

// NewUpstreamError records a non-2xx reply from the upstream API.
func NewUpstreamError(statusCode int, statusText string, body []byte) *ProxyError {
	return &ProxyError{
		IsProxyError: false,
		StatusCode:   Ptr(statusCode),
		StatusText:   statusText,
		RawBody:      body,
		Error: ErrorField{
			Message: ErrGeminiAPIPrefix + statusText,
		},
	}
}

// Cause returns the text a caller sees on the catch-all path: the underlying
// error's message when there is one, the wrapping message otherwise.
func (e *ProxyError) Cause() string {
	if e.Error.Error != nil {
		return e.Error.Error.Error()
	}
	return e.Error.Message
}

// Status returns the HTTP status to report for this error.
func (e *ProxyError) Status() int {
	if e.StatusCode != nil {
		return *e.StatusCode
	}
	return http.StatusInternalServerError
}

// String implements fmt.Stringer for log lines.
func (e *ProxyError) String() string {
	if e.Error.Error != nil {
		return fmt.Sprintf("%s: %v", e.Error.Message, e.Error.Error)
	}
	return e.Error.Message
}
