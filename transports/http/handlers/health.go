package handlers

import (
	"github.com/fasthttp/router"
	"github.com/maximhq/geminiproxy/schemas"
	"github.com/valyala/fasthttp"
)

// HealthHandler answers liveness checks.
type HealthHandler struct {
	logger schemas.Logger
}

// NewHealthHandler creates a new health handler instance.
func NewHealthHandler(logger schemas.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// RegisterRoutes registers the health-related routes.
func (h *HealthHandler) RegisterRoutes(r *router.Router) {
	r.GET("/health", h.getHealth)
}

// getHealth handles GET /health.
// It does not touch the upstream or the credential.
func (h *HealthHandler) getHealth(ctx *fasthttp.RequestCtx) {
	SendJSON(ctx, map[string]string{"status": "ok"}, h.logger)
}
