package schemas

import "context"

// Plugin observes every invocation.
// PreHook runs before the method check and may enrich the context.
// PostHook runs after the response has been decided. Hooks cannot alter the outcome;
// their errors are logged and otherwise ignored.
type Plugin interface {
	GetName() string
	PreHook(ctx *context.Context, req *InboundRequest) error
	PostHook(ctx *context.Context, resp *OutboundResponse) error
	Cleanup() error
}

// ProxyContextKey is the type for keys the proxy stores in an invocation context.
type ProxyContextKey string

const (
	// ProxyContextKeyRequestID holds the per-invocation uuid string.
	ProxyContextKeyRequestID ProxyContextKey = "request-id"
)
