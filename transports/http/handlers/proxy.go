package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/valyala/fasthttp"
)

// Function paths the proxy is served on. The first matches Netlify's functions path,
// so frontends work unchanged against the local server.
const (
	NetlifyFunctionPath = "/.netlify/functions/gemini-proxy"
	APIPath             = "/api/gemini-proxy"
)

// invocationHandler is the part of the proxy the handler needs.
type invocationHandler interface {
	Handle(ctx context.Context, req *schemas.InboundRequest) *schemas.OutboundResponse
}

// ProxyHandler serves the proxy over HTTP.
type ProxyHandler struct {
	proxy  invocationHandler
	logger schemas.Logger
}

// NewProxyHandler creates a new ProxyHandler instance.
func NewProxyHandler(proxy invocationHandler, logger schemas.Logger) *ProxyHandler {
	return &ProxyHandler{
		proxy:  proxy,
		logger: logger,
	}
}

// RegisterRoutes registers the proxy on every method of its paths; the method check is the proxy's own.
func (h *ProxyHandler) RegisterRoutes(r *router.Router) {
	r.ANY(NetlifyFunctionPath, h.handle)
	r.ANY(APIPath, h.handle)
}

func (h *ProxyHandler) handle(ctx *fasthttp.RequestCtx) {
	req := &schemas.InboundRequest{
		Method: string(ctx.Method()),
		Body:   string(ctx.PostBody()),
	}

	resp := h.proxy.Handle(context.Background(), req)

	h.logger.Debug("%s %s -> %d", req.Method, string(ctx.Path()), resp.StatusCode)
	writeResponse(ctx, resp)
}
